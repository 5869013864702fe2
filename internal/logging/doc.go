// Package logging wraps log/slog with typed attribute constructors,
// component loggers, and standardized field names so warnings and errors
// carry cause, impact, and next-step context.
package logging
