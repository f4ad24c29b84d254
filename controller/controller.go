// Package controller implements the execution loop that drives a multi-joint
// manipulator along published joint trajectories.
//
// A non-real-time producer hands trajectories in through Publish. The tick
// side adopts the newest one at the next tick boundary, samples it for the
// elapsed time, and writes position and velocity commands to the actuator
// slots claimed at construction. A publish while a trajectory is executing
// preempts it at the next tick; there is no blending between the two.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/andrinwinzap/robot-software/actuator"
	"github.com/andrinwinzap/robot-software/trajectory"
)

// Config describes the controller's shape. It is read once at construction.
type Config struct {
	// Joints lists the joint names in command order.
	Joints []string
	// CommandInterfaces and StateInterfaces name the interface kinds claimed
	// for every joint.
	CommandInterfaces []actuator.Kind
	StateInterfaces   []actuator.Kind
	// Period is the control period used by Start.
	Period time.Duration
	// Clock drives the tick loop. Defaults to the wall clock; tests inject a
	// mock.
	Clock clock.Clock
}

// Validate ensures all parts of the config are valid. An empty joint list is
// allowed and yields a no-op loop.
func (cfg Config) Validate() error {
	seen := make(map[string]bool, len(cfg.Joints))
	for _, joint := range cfg.Joints {
		if joint == "" {
			return errors.New("joint names must not be empty")
		}
		if seen[joint] {
			return errors.Errorf("duplicate joint %q", joint)
		}
		seen[joint] = true
	}
	for _, kind := range cfg.CommandInterfaces {
		if !kind.Valid() {
			return errors.Errorf("unknown command interface kind %q", kind)
		}
	}
	for _, kind := range cfg.StateInterfaces {
		if !kind.Valid() {
			return errors.Errorf("unknown state interface kind %q", kind)
		}
	}
	return nil
}

// jointHandles groups one joint's claimed slots. A nil entry means that kind
// was not configured.
type jointHandles struct {
	posCmd   actuator.Slot
	velCmd   actuator.Slot
	posState actuator.Slot
	velState actuator.Slot
}

type tickTicker struct {
	ticker *clock.Ticker
	stop   chan bool
}

// Controller owns the execution state and the claimed actuator slots.
type Controller struct {
	cfg      Config
	logger   golog.Logger
	clock    clock.Clock
	provider actuator.Provider
	handles  map[string]*jointHandles

	inbox mailbox

	// owned exclusively by the tick context
	active    *trajectory.Trajectory
	startTime time.Time
	setpoint  trajectory.Waypoint

	mu                      sync.Mutex
	ct                      tickTicker
	activeBackgroundWorkers sync.WaitGroup
	cancelCtx               context.Context
	cancel                  context.CancelFunc
	running                 bool
	released                bool
}

// New claims one slot per configured joint and interface kind from the
// provider and returns an idle controller. Slots are claimed joint by joint
// with the command kinds then the state kinds in their configured order; this
// claim order is fixed so providers that loan interfaces positionally stay
// aligned.
func New(logger golog.Logger, cfg Config, provider actuator.Provider) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	cancelCtx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		cfg:       cfg,
		logger:    logger,
		clock:     cfg.Clock,
		provider:  provider,
		handles:   make(map[string]*jointHandles, len(cfg.Joints)),
		cancelCtx: cancelCtx,
		cancel:    cancel,
		setpoint: trajectory.Waypoint{
			Positions:  make([]float64, len(cfg.Joints)),
			Velocities: make([]float64, len(cfg.Joints)),
		},
	}
	for _, joint := range cfg.Joints {
		handles := &jointHandles{}
		for _, kind := range cfg.CommandInterfaces {
			slot, err := provider.Command(actuator.SlotName(joint, kind))
			if err != nil {
				cancel()
				provider.Release()
				return nil, errors.Wrapf(err, "claiming command interfaces for joint %q", joint)
			}
			switch kind {
			case actuator.Position:
				handles.posCmd = slot
			case actuator.Velocity:
				handles.velCmd = slot
			}
		}
		for _, kind := range cfg.StateInterfaces {
			slot, err := provider.State(actuator.SlotName(joint, kind))
			if err != nil {
				cancel()
				provider.Release()
				return nil, errors.Wrapf(err, "claiming state interfaces for joint %q", joint)
			}
			switch kind {
			case actuator.Position:
				handles.posState = slot
			case actuator.Velocity:
				handles.velState = slot
			}
		}
		c.handles[joint] = handles
	}
	return c, nil
}

// Publish validates traj and hands it to the tick side. The newest publish
// wins: an unconsumed predecessor is dropped, and a trajectory arriving while
// another is executing preempts it at the next tick boundary. A rejected
// trajectory returns an error and never disturbs the running one.
func (c *Controller) Publish(traj *trajectory.Trajectory) error {
	if traj == nil {
		return errors.New("rejecting nil trajectory")
	}
	if err := traj.Validate(); err != nil {
		return errors.Wrap(err, "rejecting trajectory")
	}
	remapped, err := c.remap(traj)
	if err != nil {
		return errors.Wrap(err, "rejecting trajectory")
	}
	c.logger.Infow("received new trajectory",
		"waypoints", len(remapped.Waypoints), "duration", remapped.Duration())
	c.inbox.publish(remapped)
	return nil
}

// remap checks that traj names exactly the configured joints and, when the
// message orders them differently, reorders the waypoint data into configured
// order so the tick can index positionally.
func (c *Controller) remap(traj *trajectory.Trajectory) (*trajectory.Trajectory, error) {
	if len(traj.JointNames) != len(c.cfg.Joints) {
		return nil, errors.Errorf("trajectory names %d joints, controller has %d",
			len(traj.JointNames), len(c.cfg.Joints))
	}
	indexes := make([]int, len(c.cfg.Joints))
	same := true
	for i, joint := range c.cfg.Joints {
		found := -1
		for j, name := range traj.JointNames {
			if name == joint {
				found = j
				break
			}
		}
		if found < 0 {
			return nil, errors.Errorf("trajectory is missing joint %q", joint)
		}
		indexes[i] = found
		same = same && found == i
	}
	if same {
		return traj, nil
	}
	remapped := &trajectory.Trajectory{
		JointNames: append([]string(nil), c.cfg.Joints...),
		Waypoints:  make([]trajectory.Waypoint, len(traj.Waypoints)),
	}
	for w, wp := range traj.Waypoints {
		re := trajectory.Waypoint{
			Positions:     make([]float64, len(indexes)),
			Velocities:    make([]float64, len(indexes)),
			TimeFromStart: wp.TimeFromStart,
		}
		for i, j := range indexes {
			re.Positions[i] = wp.Positions[j]
			re.Velocities[i] = wp.Velocities[j]
		}
		remapped.Waypoints[w] = re
	}
	return remapped, nil
}

// Tick runs one control cycle at the given timestamp: adopt any newly
// published trajectory, sample the active one, and dispatch the setpoint to
// the command slots. With no active trajectory nothing is written and the
// actuators hold their last commanded values.
//
// A failed write is logged for its joint and collected while the remaining
// joints still get their commands; the combined error is returned and is
// always recoverable.
func (c *Controller) Tick(ctx context.Context, now time.Time, period time.Duration) error {
	if traj := c.inbox.tryTake(); traj != nil {
		c.active = traj
		c.startTime = now
	}
	if c.active == nil {
		return nil
	}

	reachedEnd := c.active.Sample(now.Sub(c.startTime), &c.setpoint)

	var errs error
	for i, joint := range c.cfg.Joints {
		handles := c.handles[joint]
		if handles == nil {
			continue
		}
		if handles.posCmd != nil {
			if err := handles.posCmd.Set(c.setpoint.Positions[i]); err != nil {
				c.logger.Errorw("failed to set position command", "joint", joint, "error", err)
				errs = multierr.Append(errs, err)
			}
		}
		if handles.velCmd != nil {
			if err := handles.velCmd.Set(c.setpoint.Velocities[i]); err != nil {
				c.logger.Errorw("failed to set velocity command", "joint", joint, "error", err)
				errs = multierr.Append(errs, err)
			}
		}
	}

	// The final zero-velocity setpoint was still dispatched above.
	if reachedEnd {
		c.logger.Info("trajectory execution complete")
		c.active = nil
	}
	return errs
}

// Start begins ticking at the configured period until Stop is called.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return errors.New("controller was stopped and its actuator slots released")
	}
	if c.running {
		return errors.New("controller already started")
	}
	if c.cfg.Period <= 0 {
		return errors.New("control period must be positive")
	}
	c.logger.Infof("running control loop every %v", c.cfg.Period)
	c.ct = tickTicker{
		ticker: c.clock.Ticker(c.cfg.Period),
		stop:   make(chan bool, 1),
	}
	waitCh := make(chan struct{})
	c.activeBackgroundWorkers.Add(1)
	goutils.ManagedGo(func() {
		ct := c.ct
		close(waitCh)
		for {
			if c.cancelCtx.Err() != nil {
				return
			}
			select {
			case t := <-ct.ticker.C:
				if err := c.Tick(c.cancelCtx, t, c.cfg.Period); err != nil {
					c.logger.Errorw("tick completed with errors", "error", err)
				}
			case <-ct.stop:
				return
			case <-c.cancelCtx.Done():
				return
			}
		}
	}, c.activeBackgroundWorkers.Done)
	<-waitCh
	c.running = true
	return nil
}

// Stop halts the tick loop and releases every claimed actuator slot. No
// commands are written after Stop returns; the controller cannot be
// restarted.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		c.logger.Debug("closing control loop")
		c.ct.ticker.Stop()
		close(c.ct.stop)
	}
	c.cancel()
	c.activeBackgroundWorkers.Wait()
	c.running = false
	if !c.released {
		c.provider.Release()
		c.released = true
		c.active = nil
	}
}

// State reads the claimed state interfaces. Index i of each returned slice
// corresponds to Joints[i]; kinds that were not configured read as zero.
func (c *Controller) State() (positions, velocities []float64) {
	positions = make([]float64, len(c.cfg.Joints))
	velocities = make([]float64, len(c.cfg.Joints))
	for i, joint := range c.cfg.Joints {
		handles := c.handles[joint]
		if handles == nil {
			continue
		}
		if handles.posState != nil {
			positions[i] = handles.posState.Get()
		}
		if handles.velState != nil {
			velocities[i] = handles.velState.Get()
		}
	}
	return positions, velocities
}
