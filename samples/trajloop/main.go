// Package main drives the trajectory controller against a fake actuator bank
// and logs the commanded values as a two-joint motion executes.
package main

import (
	"context"
	"time"

	"github.com/edaniels/golog"
	goutils "go.viam.com/utils"

	"github.com/andrinwinzap/robot-software/actuator"
	"github.com/andrinwinzap/robot-software/actuator/fake"
	"github.com/andrinwinzap/robot-software/controller"
	"github.com/andrinwinzap/robot-software/trajectory"
)

var logger = golog.NewDevelopmentLogger("trajloop")

func main() {
	goutils.ContextualMain(mainWithArgs, logger)
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	joints := []string{"shoulder", "elbow"}
	bank := fake.NewBank(joints...)

	ctrl, err := controller.New(logger, controller.Config{
		Joints:            joints,
		CommandInterfaces: []actuator.Kind{actuator.Position, actuator.Velocity},
		StateInterfaces:   []actuator.Kind{actuator.Position, actuator.Velocity},
		Period:            10 * time.Millisecond,
	}, bank)
	if err != nil {
		return err
	}
	if err := ctrl.Start(); err != nil {
		return err
	}
	defer ctrl.Stop()

	if err := ctrl.Publish(&trajectory.Trajectory{
		JointNames: joints,
		Waypoints: []trajectory.Waypoint{
			{Positions: []float64{0, 0}, Velocities: []float64{0, 0}, TimeFromStart: 0},
			{Positions: []float64{1, 2}, Velocities: []float64{0.5, 1}, TimeFromStart: time.Second},
			{Positions: []float64{2, 4}, Velocities: []float64{0, 0}, TimeFromStart: 2 * time.Second},
		},
	}); err != nil {
		return err
	}

	for i := 0; i < 6; i++ {
		if !goutils.SelectContextOrWait(ctx, 500*time.Millisecond) {
			return ctx.Err()
		}
		logger.Infow("commanded",
			"shoulder", bank.CommandValue(actuator.SlotName("shoulder", actuator.Position)),
			"elbow", bank.CommandValue(actuator.SlotName("elbow", actuator.Position)),
		)
	}
	return nil
}
