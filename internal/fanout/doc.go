// Package fanout is the two-phase orchestration engine: concurrent
// per-provider dispatch under individual deadlines, a whole-batch join
// with a salvage path, and the optional synthesis phase that combines
// phase-1 answers through one designated provider.
//
// Each selected provider gets exactly one promise, settled exactly once
// by whichever happens first: the provider's real outcome or its own
// deadline. The batch collector joins the promises under a second,
// independent budget; when that budget blows, it polls each promise and
// keeps whatever already settled instead of discarding the batch. A
// provider whose promise settled as a timeout keeps running in the
// background (cooperative cleanup) and its eventual real outcome is still
// delivered through the event hooks, flagged late.
package fanout
