// Package fake provides an in-memory actuator bank for tests and demos.
package fake

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/andrinwinzap/robot-software/actuator"
)

// Bank holds one command and one state slot per joint and interface kind and
// implements actuator.Provider. Slots are claimed at most once until Release.
type Bank struct {
	mu       sync.Mutex
	commands map[string]*Slot
	states   map[string]*Slot
	claimed  map[string]bool
}

// NewBank returns a bank with position and velocity command and state slots
// for each named joint.
func NewBank(joints ...string) *Bank {
	b := &Bank{
		commands: map[string]*Slot{},
		states:   map[string]*Slot{},
		claimed:  map[string]bool{},
	}
	for _, joint := range joints {
		for _, kind := range []actuator.Kind{actuator.Position, actuator.Velocity} {
			name := actuator.SlotName(joint, kind)
			b.commands[name] = &Slot{name: name}
			b.states[name] = &Slot{name: name}
		}
	}
	return b
}

// Command claims the named command slot.
func (b *Bank) Command(name string) (actuator.Slot, error) {
	return b.claim(b.commands, "command", name)
}

// State claims the named state slot.
func (b *Bank) State(name string) (actuator.Slot, error) {
	return b.claim(b.states, "state", name)
}

func (b *Bank) claim(slots map[string]*Slot, label, name string) (actuator.Slot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	slot, ok := slots[name]
	if !ok {
		return nil, errors.Errorf("no %s slot %q", label, name)
	}
	key := label + ":" + name
	if b.claimed[key] {
		return nil, errors.Errorf("%s slot %q already claimed", label, name)
	}
	b.claimed[key] = true
	return slot, nil
}

// Release returns all claimed slots to the bank.
func (b *Bank) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.claimed = map[string]bool{}
}

// CommandValue returns the last value written to the named command slot.
func (b *Bank) CommandValue(name string) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.commands[name].Get()
}

// CommandWrites returns how many writes the named command slot has accepted.
func (b *Bank) CommandWrites(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.commands[name].Writes()
}

// SetState stores a value in the named state slot, standing in for feedback
// from real hardware.
func (b *Bank) SetState(name string, value float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states[name].set(value)
}

// FailWrites makes the named command slot reject (or accept again) writes.
func (b *Bank) FailWrites(name string, fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands[name].setFail(fail)
}

// Slot is a fake numeric slot. Command writes can be made to fail to exercise
// the controller's per-joint error handling.
type Slot struct {
	mu     sync.Mutex
	name   string
	value  float64
	writes int
	fail   bool
}

// Name returns the slot's fully qualified name.
func (s *Slot) Name() string {
	return s.name
}

// Set stores value, or refuses it when failure is injected.
func (s *Slot) Set(value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.Errorf("write to %q refused", s.name)
	}
	s.value = value
	s.writes++
	return nil
}

// Get returns the stored value.
func (s *Slot) Get() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Writes returns the number of accepted writes.
func (s *Slot) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Slot) set(value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
}

func (s *Slot) setFail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}
