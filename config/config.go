// Package config loads specialist profile sets and routing thresholds
// from TOML files and turns them into registry snapshots.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"routekit/errors"
	"routekit/registry"
	"routekit/router"
)

// Result is the outcome of loading one configuration file.
type Result struct {
	// Snapshot is the immutable profile set, ready to serve or swap in.
	Snapshot *registry.Snapshot

	// Router is the routing tuning, file overrides applied on top of
	// the defaults.
	Router router.Config
}

// fileConfig mirrors the TOML layout:
//
//	fallback = "generalist"
//
//	[router]
//	min_score = 1.0
//
//	[[specialist]]
//	id = "graphics"
//	description = "Rendering and shaders"
//	priority = 0
//	requires = ["platform:webgl"]
//	  [specialist.keywords]
//	  shader = 3.0
type fileConfig struct {
	Fallback    string              `toml:"fallback" validate:"required"`
	Router      routerSection       `toml:"router"`
	Specialists []specialistSection `toml:"specialist" validate:"required,min=1,dive"`
}

// routerSection uses pointers so absent keys keep their defaults.
type routerSection struct {
	MinScore        *float64 `toml:"min_score" validate:"omitempty,gte=0"`
	SecondaryMin    *float64 `toml:"secondary_min" validate:"omitempty,gte=0"`
	MaxSecondary    *int     `toml:"max_secondary" validate:"omitempty,gte=0"`
	TieEpsilon      *float64 `toml:"tie_epsilon" validate:"omitempty,gte=0"`
	DemotionPenalty *float64 `toml:"demotion_penalty" validate:"omitempty,gt=0,lte=1"`
}

type specialistSection struct {
	ID          string             `toml:"id" validate:"required"`
	Description string             `toml:"description"`
	Priority    int                `toml:"priority"`
	Requires    []string           `toml:"requires"`
	Keywords    map[string]float64 `toml:"keywords" validate:"omitempty,dive,gte=0"`
}

var validate = validator.New()

// Load reads and parses a profile configuration file.
func Load(path string) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigParse(fmt.Sprintf("reading %s", path), errors.WithCause(err))
	}
	return Parse(string(content))
}

// Parse parses TOML configuration content into a snapshot and tuning.
func Parse(content string) (*Result, error) {
	var fc fileConfig
	if _, err := toml.Decode(content, &fc); err != nil {
		return nil, errors.ConfigParse("decoding profile configuration", errors.WithCause(err))
	}

	if err := validate.Struct(fc); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			return nil, errors.ConfigParse(describeValidation(verrs))
		}
		return nil, errors.ConfigParse("validating profile configuration", errors.WithCause(err))
	}

	b := registry.NewBuilder()
	for _, s := range fc.Specialists {
		p := registry.Profile{
			ID:          s.ID,
			Description: s.Description,
			Keywords:    s.Keywords,
			Requires:    s.Requires,
			Priority:    s.Priority,
		}
		if err := b.Add(p); err != nil {
			return nil, err
		}
	}
	b.SetFallback(fc.Fallback)

	snap, err := b.Build()
	if err != nil {
		return nil, err
	}

	return &Result{
		Snapshot: snap,
		Router:   fc.Router.apply(router.DefaultConfig()),
	}, nil
}

// apply overlays the file overrides on a base tuning.
func (rs routerSection) apply(base router.Config) router.Config {
	if rs.MinScore != nil {
		base.MinScore = *rs.MinScore
	}
	if rs.SecondaryMin != nil {
		base.SecondaryMin = *rs.SecondaryMin
	}
	if rs.MaxSecondary != nil {
		base.MaxSecondary = *rs.MaxSecondary
	}
	if rs.TieEpsilon != nil {
		base.TieEpsilon = *rs.TieEpsilon
	}
	if rs.DemotionPenalty != nil {
		base.DemotionPenalty = *rs.DemotionPenalty
	}
	return base
}

// describeValidation flattens validator errors into one message.
func describeValidation(verrs validator.ValidationErrors) string {
	msg := "invalid profile configuration:"
	for _, ve := range verrs {
		msg += fmt.Sprintf(" field %s failed %q;", ve.Namespace(), ve.Tag())
	}
	return msg
}
