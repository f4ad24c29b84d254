package trajectory

import (
	"testing"
	"time"

	"go.viam.com/test"
)

func TestValidate(t *testing.T) {
	good := func() *Trajectory {
		return &Trajectory{
			JointNames: []string{"a", "b"},
			Waypoints: []Waypoint{
				{Positions: []float64{0, 0}, Velocities: []float64{0, 0}, TimeFromStart: 0},
				{Positions: []float64{1, 1}, Velocities: []float64{1, 1}, TimeFromStart: time.Second},
			},
		}
	}
	test.That(t, good().Validate(), test.ShouldBeNil)

	empty := good()
	empty.Waypoints = nil
	test.That(t, empty.Validate(), test.ShouldNotBeNil)

	shortPos := good()
	shortPos.Waypoints[1].Positions = []float64{1}
	err := shortPos.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "positions")

	shortVel := good()
	shortVel.Waypoints[0].Velocities = nil
	err = shortVel.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "velocities")

	backwards := good()
	backwards.Waypoints[1].TimeFromStart = 0
	err = backwards.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "strictly increasing")

	negative := good()
	negative.Waypoints[0].TimeFromStart = -time.Second
	err = negative.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "negative")
}

func TestDuration(t *testing.T) {
	traj := &Trajectory{
		JointNames: []string{"a"},
		Waypoints: []Waypoint{
			{Positions: []float64{0}, Velocities: []float64{0}, TimeFromStart: 0},
			{Positions: []float64{1}, Velocities: []float64{0}, TimeFromStart: 3 * time.Second},
		},
	}
	test.That(t, traj.Duration(), test.ShouldEqual, 3*time.Second)
	test.That(t, (&Trajectory{}).Duration(), test.ShouldEqual, time.Duration(0))
}
