// Package logging provides structured logging for VoltMesh Core.
//
// It wraps log/slog so every component logs through the same handler:
// JSON for production, text for development, level filtering from the
// logging section of config.yaml, and service/version fields on every
// entry. Never log secrets or broker credentials.
package logging
