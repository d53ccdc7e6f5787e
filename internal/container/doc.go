// Package container is the name-to-factory registry every instance owns.
//
// A Container maps keys of the form "<kind>:<name>" (for example
// "engine:blog" or "service:store") to factories. Factories run lazily on
// first lookup and their result is cached, so repeated lookups of the same
// key return the identical value. Locally-owned services are held in a
// samber/do root scope, which also shuts them down when the container is
// destroyed.
//
// Delegations are the one exception to ownership: Delegate registers a key
// whose every lookup is forwarded live to another container. The value is
// never cached locally and never shut down by the delegating container, so
// a child can share a host's service by identity without owning it.
package container
