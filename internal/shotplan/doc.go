// Package shotplan defines the shot-plan input contract produced by the
// upstream planning stage. Scenes are read-only to the resolution pipeline.
package shotplan
