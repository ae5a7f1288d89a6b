// Package database provides SQLite connectivity for VoltMesh Core.
//
// It manages the connection (WAL mode, busy timeout, single writer),
// applies embedded schema migrations on startup, and exposes health
// checks for the API layer. All queries elsewhere in the codebase use
// parameterised statements against this handle.
package database
