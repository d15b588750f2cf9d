// Package store builds the application state graph.
//
// New constructs every sub-store in a fixed order, handing each one the Root
// as a storeapi.Root. Sub-stores only reach each other through that
// interface. Once all of them exist their reactions are registered in the
// same order, then the root's own daemon status reaction.
//
// The root reaction gates the config and identity loads behind the daemon
// being Up. Both loads run concurrently; whatever their outcome, the route
// is determined exactly once afterwards.
//
// Shutdown unregisters every reaction and listener and waits for in-flight
// effects.
package store
