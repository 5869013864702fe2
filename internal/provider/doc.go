// Package provider defines the uniform search interface implemented by each
// external media-source adapter, and the candidate asset type they return.
package provider
