/*
 * Copyright © 2019 One Concern
 *
 */

package core

import (
	"fmt"
	"sync"

	"github.com/oneconcern/strata/pkg/event"
)

// ChangeLog is the append-only sequence of the events of a model, indexed by revision.
//
// The event recorded at revision r is the one which brought the model to revision r:
// the log starts at revision 0 with the creation of the model, and holds exactly one
// event per revision.
type ChangeLog struct {
	mx     sync.RWMutex
	events []event.Event
}

// NewChangeLog builds an empty change log
func NewChangeLog() *ChangeLog {
	return &ChangeLog{}
}

// Append an event. The revision of the event must follow the last one.
func (c *ChangeLog) Append(e event.Event) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if e.Revision() != int64(len(c.events)) {
		panic(fmt.Sprintf("dev error: change log at revision %d cannot append %v", len(c.events)-1, e))
	}
	c.events = append(c.events, e)
}

// Revision of the last event, or -1 for an empty log
func (c *ChangeLog) Revision() int64 {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return int64(len(c.events)) - 1
}

// Event at some revision, nil if no such revision was logged
func (c *ChangeLog) Event(rev int64) event.Event {
	c.mx.RLock()
	defer c.mx.RUnlock()
	if rev < 0 || rev >= int64(len(c.events)) {
		return nil
	}
	return c.events[rev]
}

// Since returns the events with a revision strictly greater than rev
func (c *ChangeLog) Since(rev int64) []event.Event {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.between(rev+1, int64(len(c.events))-1)
}

// Between returns the events with a revision in [from, to]
func (c *ChangeLog) Between(from, to int64) []event.Event {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.between(from, to)
}

func (c *ChangeLog) between(from, to int64) []event.Event {
	if from < 0 {
		from = 0
	}
	if last := int64(len(c.events)) - 1; to > last {
		to = last
	}
	if from > to {
		return nil
	}
	cp := make([]event.Event, to-from+1)
	copy(cp, c.events[from:to+1])
	return cp
}
