package engine

// State is an instance's position in its lifecycle.
//
//	Built -> Booting -> Booted | Failed
//	any state except Booting -> Destroyed
type State string

const (
	StateBuilt     State = "built"
	StateBooting   State = "booting"
	StateBooted    State = "booted"
	StateFailed    State = "failed"
	StateDestroyed State = "destroyed"
)

func (s State) String() string {
	return string(s)
}
