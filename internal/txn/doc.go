// Package txn provides the in-memory transactional staging primitive used
// by the interactor and controller registries.
//
// A RollbackMap holds committed entries plus a per-transaction staging
// layer: sets and deletes are buffered until Commit applies them, or
// Rollback discards them. It is the in-memory counterpart of a database
// transaction, allowing the unit of work to treat the durable store and
// the simulation registries uniformly.
//
// # Thread Safety
//
// A RollbackMap supports exactly one in-flight transaction and performs
// no internal locking. All calls within a transaction must come from a
// single logical thread of control; concurrent transactions sharing one
// instance race on the same staging buffers and are unsupported.
package txn
