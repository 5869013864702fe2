// Package pipeline wires the resolution stages end to end: guardrail,
// director, resolver, relevance and frame gates, curator, and manifest
// assembly, with run history persisted along the way.
//
// The pipeline never fails for data-quality reasons. Lower stages return
// diagnostics that accumulate into the Report; the only errors Run
// returns are a structurally invalid plan, a missing episode topic, or
// context cancellation.
package pipeline
