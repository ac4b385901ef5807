// Package orchestrator composes single-purpose Fizzy API calls into the
// higher-level operations exposed as tools.
//
// Task runs create or update a card and then apply best-effort side effects
// (steps, tags, assignees, status, column). A failing side effect is recorded
// in the result and never aborts the run. Bulk close closes an explicit set
// of cards, or every open card matching a filter, one card at a time.
//
// Every remote call is awaited before the next one is issued; later steps
// depend on the outcome of earlier ones.
package orchestrator
