// Package engine builds, boots and tears down engine instances.
//
// An engine is a self-contained module registered in a host's container under
// "engine:<kebab-name>". Building it produces a child Instance with its own
// container that sees nothing of the host except the services the engine
// declares AND the host grants for it:
//
//	host, err := engine.NewHost(ir.HostConfig{
//	    Name: "app",
//	    Engines: map[string]ir.HostEngineConfig{
//	        "blog": {Dependencies: ir.Services("store")},
//	    },
//	})
//	blog, err := host.BuildChildEngineInstance(ctx, "blog")
//	err = blog.Boot(ctx)
//	store, err := blog.Lookup("service:store") // same value as the host's
//
// Hosts may alias a service ({"data-store": "store"}); the engine looks up
// the external name and receives the host's internal service.
//
// LIFECYCLE:
//
//	Built -> Booting -> Booted | Failed
//	any state except Booting -> Destroyed
//
// Boot is single-flight per instance. Destroy cascades to children in
// reverse build order before the instance's own container is torn down.
//
// DIAGNOSTICS:
//
// Deprecations (camelCase engine names, sharing the host's "router" service)
// go to the diag.Sink given to the Builder, never to the error path. Every
// lifecycle transition is recorded in the Journal, stamped by a logical clock.
package engine
