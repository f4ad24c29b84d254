package controller

import (
	"sync/atomic"

	"github.com/andrinwinzap/robot-software/trajectory"
)

// mailbox is a single-slot, most-recent-wins handoff between the non-real-time
// publish path and the real-time tick. The fresh flag lets the tick skip the
// slot when nothing new has arrived. Both sides are lock-free; the tick side
// never blocks and never allocates. Publications are handed off at pointer
// granularity, so the consumer sees a whole trajectory or nothing.
type mailbox struct {
	slot  atomic.Pointer[trajectory.Trajectory]
	fresh atomic.Bool
}

// publish replaces the slot's contents. An unconsumed previous trajectory is
// dropped.
func (m *mailbox) publish(traj *trajectory.Trajectory) {
	m.slot.Store(traj)
	m.fresh.Store(true)
}

// tryTake claims and removes the current contents if a publish happened since
// the last take. It can return nil even after the flag was raised when a
// concurrent publish already had its trajectory claimed; the caller treats
// that the same as nothing new.
func (m *mailbox) tryTake() *trajectory.Trajectory {
	if !m.fresh.Swap(false) {
		return nil
	}
	return m.slot.Swap(nil)
}
