// Package controller contains the per-device facades between the
// optimizer and the interactors. A controller translates its device's
// state into optimizer demand (AddToSnapshot), accepts distributed
// schedules (UseSchedule), and on each tick pushes the current
// assignment into its interactor (UpdateDevice).
//
// Controllers absorb schedule-query errors rather than propagating
// them: a query outside the assignment window becomes a kind-specific
// fallback. Batteries hold their last commanded rate, variable actions
// are commanded to zero so a load cannot keep drawing past its window,
// constant actions do nothing. A device whose scheduling window has
// emptied is silently omitted from the optimization round; that is
// expected steady state, not an error.
package controller
