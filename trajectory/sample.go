package trajectory

import (
	"sort"
	"time"
)

// Interpolate writes the affine blend of waypoints a and b at the given
// fraction into out, elementwise over positions and velocities. A fraction of
// 0 yields a, 1 yields b. All three waypoints must have the same joint count;
// out's slices are written in place so the caller can reuse one buffer across
// ticks without allocating.
func Interpolate(a, b Waypoint, fraction float64, out *Waypoint) {
	for i := range a.Positions {
		out.Positions[i] = fraction*b.Positions[i] + (1.0-fraction)*a.Positions[i]
	}
	for i := range a.Velocities {
		out.Velocities[i] = fraction*b.Velocities[i] + (1.0-fraction)*a.Velocities[i]
	}
}

// Sample writes the setpoint for the given elapsed time into out and reports
// whether the trajectory has been fully consumed. Once elapsed reaches the
// trajectory's duration the setpoint saturates at the last waypoint's
// positions with zero velocities. A single-waypoint trajectory is degenerate
// and reports reached-end immediately. An elapsed time before the first
// waypoint's time holds the first waypoint.
//
// The segment holding elapsed is located by binary search over the actual
// waypoint times and the blend fraction is normalized by the real segment
// duration, so unevenly spaced waypoints sample correctly.
//
// Sample assumes a validated trajectory and never fails or allocates.
func (t *Trajectory) Sample(elapsed time.Duration, out *Waypoint) (reachedEnd bool) {
	last := t.Waypoints[len(t.Waypoints)-1]
	if len(t.Waypoints) < 2 || elapsed >= last.TimeFromStart {
		copy(out.Positions, last.Positions)
		for i := range out.Velocities {
			out.Velocities[i] = 0.0
		}
		out.TimeFromStart = elapsed
		return true
	}

	// Largest index whose time is <= elapsed; elapsed < last time guarantees
	// a next waypoint exists.
	ind := sort.Search(len(t.Waypoints), func(i int) bool {
		return t.Waypoints[i].TimeFromStart > elapsed
	}) - 1
	if ind < 0 {
		ind = 0
	}

	from, to := t.Waypoints[ind], t.Waypoints[ind+1]
	fraction := (elapsed - from.TimeFromStart).Seconds() / (to.TimeFromStart - from.TimeFromStart).Seconds()
	if fraction < 0.0 {
		fraction = 0.0
	} else if fraction > 1.0 {
		fraction = 1.0
	}
	Interpolate(from, to, fraction, out)
	out.TimeFromStart = elapsed
	return false
}
