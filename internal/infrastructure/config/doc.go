// Package config loads VoltMesh Core configuration from YAML with
// environment variable overrides.
//
// Loading order: hardcoded defaults, then the YAML file, then
// VOLTMESH_* environment variables. The loaded configuration is
// validated before use.
package config
