// Package router maps free-text development task requests to specialist
// dispatch decisions.
//
// Routing is a pure function: a TaskRequest plus a registry.Snapshot go
// in, a Decision comes out, and identical inputs always produce the
// identical Decision. Scoring sums the weights of profile keywords found
// in the description's token n-grams; profiles with unmet prerequisite
// tags are demoted out of primary contention; when nothing clears the
// minimum score the registry's generalist fallback takes the task with
// a "low confidence" note.
//
// The Advisor wraps routing with request IDs, logging and best-effort
// knowledge-base references; Instrumented adds Prometheus counters.
// Both are optional layers over the same pure Route call.
package router
