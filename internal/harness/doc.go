// Package harness runs conformance scenarios against the engine runtime.
//
// A scenario declares a host (its name, the services it owns and the grants
// it makes to engines), a set of engine definitions, and a list of steps
// executed in order against a real engine.Instance tree. Every host service
// is a testutil.StubService, so identity checks compare pointers the host
// registered.
//
// # Scenario Format
//
//	name: aliased_service
//	description: "A host alias forwards to the host's own service"
//	host:
//	  name: app
//	  services: [store]
//	  engines:
//	    blog:
//	      dependencies:
//	        services: [{data-store: store}]
//	engines:
//	  - name: blog
//	    dependencies:
//	      services: [data-store]
//	    lookups: ["service:data-store"]
//	    initializers: [seed]
//	steps:
//	  - build: blog
//	  - boot: blog
//	  - lookup: "service:data-store"
//	    on: blog
//	    same_as: {on: host, key: "service:store"}
//	assertions:
//	  - type: deprecations
//	    messages: []
//
// Steps reference instances by name: "host" is the root, and a build step
// names its result after the requested engine unless "as" says otherwise.
// Each step expects success unless "expect" names an error code such as
// UNSATISFIED_DEPENDENCY.
//
// # Assertion Types
//
//   - deprecations: the exact list of deprecation messages, in order
//   - deprecation_count: how many times one message was emitted
//   - state: the lifecycle state of one instance
//   - events: the journal event kinds recorded for one instance
//
// # Deterministic Testing
//
// Runs use testutil.DeterministicClock for journal sequence numbers and an
// engine.SequenceGenerator for instance IDs ("inst-1", "inst-2", ...), so
// traces are stable for golden comparison.
package harness
