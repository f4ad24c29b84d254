package controller

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/andrinwinzap/robot-software/trajectory"
)

func constantTrajectory(value float64) *trajectory.Trajectory {
	return &trajectory.Trajectory{
		JointNames: []string{"j"},
		Waypoints: []trajectory.Waypoint{
			{Positions: []float64{value}, Velocities: []float64{value}, TimeFromStart: 0},
			{Positions: []float64{value}, Velocities: []float64{value}, TimeFromStart: time.Second},
		},
	}
}

func TestMailboxTakeIdempotence(t *testing.T) {
	var m mailbox
	test.That(t, m.tryTake(), test.ShouldBeNil)

	traj := constantTrajectory(1)
	m.publish(traj)
	test.That(t, m.tryTake(), test.ShouldEqual, traj)
	test.That(t, m.tryTake(), test.ShouldBeNil)
	test.That(t, m.tryTake(), test.ShouldBeNil)
}

func TestMailboxMostRecentWins(t *testing.T) {
	var m mailbox
	first := constantTrajectory(1)
	second := constantTrajectory(2)
	m.publish(first)
	m.publish(second)
	test.That(t, m.tryTake(), test.ShouldEqual, second)
	test.That(t, m.tryTake(), test.ShouldBeNil)
}

func TestMailboxConcurrentHandoff(t *testing.T) {
	// A consumer racing a producer must only ever observe trajectories whose
	// contents are internally consistent, i.e. handed off whole.
	var m mailbox
	const publishes = 1000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < publishes; i++ {
			m.publish(constantTrajectory(float64(i)))
		}
	}()

	// The final publication stays in the slot until taken, so draining until
	// it shows up always terminates.
	var last float64 = -1
	for last != publishes-1 {
		traj := m.tryTake()
		if traj == nil {
			runtime.Gosched()
			continue
		}
		value := traj.Waypoints[0].Positions[0]
		for _, wp := range traj.Waypoints {
			test.That(t, wp.Positions[0], test.ShouldEqual, value)
			test.That(t, wp.Velocities[0], test.ShouldEqual, value)
		}
		// Publications are also observed in order.
		test.That(t, value, test.ShouldBeGreaterThan, last)
		last = value
	}
	wg.Wait()
}
