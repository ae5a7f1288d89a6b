// Package manager ties the three device registries together: the
// durable store, the interactor registry and the controller registry.
//
// Every mutation runs inside a unit of work that spans a database
// transaction and the in-memory staging of both registries, so a device
// is either installed in all three places or in none. The manager also
// implements the service surface controllers read from during
// orchestration.
package manager
