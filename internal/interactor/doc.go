// Package interactor contains the device-communication layer: one
// interactor per device id, kind-matched, owning the mutable simulated
// state of its device. The implementations here are physical
// simulations (energy integration, rate clamping, state-machine
// transitions), and they are the reference implementations of the
// contract real device drivers must satisfy.
//
// Time is externally driven: nothing in this package reads the wall
// clock. Callers pass `now` into Update and must supply monotonically
// non-decreasing values per device; an earlier `now` yields undefined
// negative-elapsed behaviour.
//
// The Registry composes one staged RollbackMap per device kind, so
// interactor lifecycle (add on device creation, remove on deletion)
// participates in the enclosing unit of work.
package interactor
