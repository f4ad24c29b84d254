// Package actuator describes the command and state interface surface the
// execution controller writes to and reads from. Slots are opaque numeric
// handles owned by the hosting framework; the controller claims them once at
// construction and releases them on stop.
package actuator

// Kind enumerates the per-joint interface kinds.
type Kind string

// The interface kinds a joint can expose.
const (
	Position Kind = "position"
	Velocity Kind = "velocity"
)

// Valid reports whether k names a known interface kind.
func (k Kind) Valid() bool {
	return k == Position || k == Velocity
}

// SlotName returns the fully qualified name of one joint's interface slot,
// e.g. "elbow/position".
func SlotName(joint string, kind Kind) string {
	return joint + "/" + string(kind)
}

// Slot is a single numeric handle. Command slots are written every tick and
// may reject a value; state slots are read on demand.
type Slot interface {
	Name() string
	Set(value float64) error
	Get() float64
}

// Provider hands out exclusive slots by their fully qualified name and takes
// every outstanding claim back on Release.
type Provider interface {
	Command(name string) (Slot, error)
	State(name string) (Slot, error)
	Release()
}
