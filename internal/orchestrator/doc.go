// Package orchestrator drives the planning cycle: collect every
// device's demand into a snapshot, run the optimizer, then distribute
// the resulting schedule back to the controllers.
//
// Collection and distribution are strictly separated passes. No
// controller sees the new schedule until every controller has
// contributed to the snapshot, so a cycle's input can never be polluted
// by its own output.
package orchestrator
