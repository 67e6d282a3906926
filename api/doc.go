// Package api holds the public data model shared between the quorum
// facade and the internal fan-out engine: batch requests, normalized
// per-provider results, batch results, and the synthesis configuration.
//
// Everything in this package is a plain immutable record. Instances are
// created fresh for every batch, handed to the caller once, and never
// mutated afterwards; the orchestrator keeps no reference to them across
// calls. All records marshal to JSON with goccy/go-json so callers can
// persist them as-is.
package api
