package engine

import "github.com/roach88/enginehost/internal/ir"

// RouterService is the host service name that triggers a deprecation when
// shared with an engine.
const RouterService = "router"

// ResolveServiceMap pairs each service an engine wants with what its host
// grants for that engine.
//
// wanted holds engine-side bare names. granted holds host entries, bare or
// aliased; a host entry matches when its external name equals the wanted
// name, and its internal name is the host service to forward to. The first
// matching host entry wins. Grants come back in declaration order; wanted
// names without a match are returned with Satisfied=false.
func ResolveServiceMap(wanted, granted []ir.ServiceEntry) []ir.ServiceGrant {
	if len(wanted) == 0 {
		return nil
	}

	index := make(map[string]string, len(granted))
	for _, entry := range granted {
		if _, dup := index[entry.External]; dup {
			continue
		}
		index[entry.External] = entry.Internal
	}

	grants := make([]ir.ServiceGrant, 0, len(wanted))
	for _, w := range wanted {
		internal, ok := index[w.External]
		grant := ir.ServiceGrant{External: w.External, Satisfied: ok}
		if ok {
			grant.Internal = internal
		}
		grants = append(grants, grant)
	}
	return grants
}

// UnsatisfiedServices returns the external names of grants the host did not
// make.
func UnsatisfiedServices(grants []ir.ServiceGrant) []string {
	var out []string
	for _, g := range grants {
		if !g.Satisfied {
			out = append(out, g.External)
		}
	}
	return out
}

func grantsRouter(g ir.ServiceGrant) bool {
	return g.Satisfied && g.External == RouterService
}
