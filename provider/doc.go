// Package provider defines the capability the orchestration engine
// consumes: an opaque responder backend that accepts one request and
// yields one raw result, optionally streaming partial text along the way.
//
// The engine never looks inside a provider beyond its id and its
// CanSynthesize flag. Cancellation is carried by the context handed to
// Submit; whether that context is ever cancelled on timeout is the
// engine's business (see the cooperative-cleanup policy in the root
// package), so implementations must simply honor ctx like any other Go
// network call.
//
// Concrete adapters live in subpackages (openai) or in the caller's own
// code; registration happens on the orchestrator, not via a global map.
package provider
