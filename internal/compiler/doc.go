// Package compiler turns CUE host and engine declarations into IR.
//
//	host: {
//	    name: "app"
//	    services: ["store", "router"]
//	    engines: blog: dependencies: services: ["store", {"data-store": "store"}]
//	}
//	engine: blog: dependencies: services: ["store", "data-store"]
//
// CompileHost and CompileEngine parse one value each; CompileBundle reads a
// whole specs directory's top-level host and engine fields. Validate checks
// one definition; CrossValidate reports the host/engine mismatches that only
// show up at lookup time.
package compiler
