// Package optimizer defines the boundary types shared with the external
// schedule optimizer: the Snapshot handed to it (per-kind demand
// descriptors, a price prognosis source, summed generation), the
// Schedule it returns (per-device, time-parameterized assignments), and
// the Optimizer interface itself.
//
// The optimization engine is an external collaborator: a pure function
// from a Snapshot to a cost and an assigned Schedule. Greedy, the
// deterministic baseline shipped here, implements the same interface so
// the daemon runs standalone and tests have a fixed reference point.
//
// Assignment accessors are time-parameterized and return ErrOutOfRange
// when queried outside their window. Controllers are the layer that
// absorbs that error and applies kind-specific fallbacks; nothing in
// this package does.
package optimizer
