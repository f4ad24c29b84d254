// Package trajectory holds the joint-space trajectory types consumed by the
// execution controller, plus the interpolation and sampling math that turns a
// trajectory and an elapsed time into a per-tick setpoint.
package trajectory

import (
	"time"

	"github.com/pkg/errors"
)

// Waypoint is a single timestamped target of per-joint positions and
// velocities. Positions and Velocities are index-aligned with the owning
// trajectory's JointNames.
type Waypoint struct {
	Positions     []float64
	Velocities    []float64
	TimeFromStart time.Duration
}

// Trajectory is an ordered sequence of waypoints spanning a start-to-finish
// motion. Waypoints must be sorted by TimeFromStart, strictly ascending.
type Trajectory struct {
	JointNames []string
	Waypoints  []Waypoint
}

// Duration returns the time from start of the last waypoint, which is the
// total execution time of the trajectory.
func (t *Trajectory) Duration() time.Duration {
	if len(t.Waypoints) == 0 {
		return 0
	}
	return t.Waypoints[len(t.Waypoints)-1].TimeFromStart
}

// Validate checks the invariants Sample depends on: at least one waypoint,
// position/velocity lengths matching the joint count, and strictly
// increasing, non-negative waypoint times.
func (t *Trajectory) Validate() error {
	if len(t.Waypoints) == 0 {
		return errors.New("trajectory has no waypoints")
	}
	numJoints := len(t.JointNames)
	for i, wp := range t.Waypoints {
		if len(wp.Positions) != numJoints {
			return errors.Errorf("waypoint %d has %d positions for %d joints", i, len(wp.Positions), numJoints)
		}
		if len(wp.Velocities) != numJoints {
			return errors.Errorf("waypoint %d has %d velocities for %d joints", i, len(wp.Velocities), numJoints)
		}
		if wp.TimeFromStart < 0 {
			return errors.Errorf("waypoint %d has negative time from start %v", i, wp.TimeFromStart)
		}
		if i > 0 && wp.TimeFromStart <= t.Waypoints[i-1].TimeFromStart {
			return errors.Errorf(
				"waypoint times must be strictly increasing but waypoint %d at %v follows %v",
				i, wp.TimeFromStart, t.Waypoints[i-1].TimeFromStart)
		}
	}
	return nil
}
