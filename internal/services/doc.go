// Package services defines the shared error taxonomy for pipeline stages.
// Data-quality shortfalls are never modeled as errors; only precondition
// violations and infrastructure failures carry the sentinel markers here.
package services
