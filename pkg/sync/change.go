/*
 * Copyright © 2019 One Concern
 *
 */

package sync

import (
	"context"

	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/core"
	"github.com/oneconcern/strata/pkg/model"
)

// LocalChange is a command staged locally, waiting for confirmation.
//
// It is resolved exactly once, by a reconciliation pass.
type LocalChange struct {
	cmd        command.Command
	actor      model.ID
	optimistic int64
	callback   core.Callback

	done   chan struct{}
	result int64
	err    error
}

func newLocalChange(cmd command.Command, optimistic int64, o changeOptions) *LocalChange {
	return &LocalChange{
		cmd:        cmd,
		actor:      o.actor,
		optimistic: optimistic,
		callback:   o.callback,
		done:       make(chan struct{}),
	}
}

// Command as staged
func (c *LocalChange) Command() command.Command { return c.cmd }

// Actor of this change
func (c *LocalChange) Actor() model.ID { return c.actor }

// OptimisticRevision is the revision the model would reach with this change,
// assuming no remote change. It is command.NoChange when the change was a no-op
// against the optimistic view.
func (c *LocalChange) OptimisticRevision() int64 { return c.optimistic }

// Done is closed when the change is resolved
func (c *LocalChange) Done() <-chan struct{} { return c.done }

// Result waits for the change to be resolved and returns the revision of the model
// after this change, command.NoChange or command.Failed
func (c *LocalChange) Result() int64 {
	<-c.done
	return c.result
}

// Err waits for the change to be resolved and returns why it failed, if it did
func (c *LocalChange) Err() error {
	<-c.done
	return c.err
}

// Wait for the change to be resolved, or for the context to be done
func (c *LocalChange) Wait(ctx context.Context) (int64, error) {
	select {
	case <-c.done:
		return c.result, c.err
	case <-ctx.Done():
		return command.Failed, ctx.Err()
	}
}

func (c *LocalChange) resolve(result int64, err error) {
	c.result = result
	c.err = err
	close(c.done)

	if c.callback == nil {
		return
	}
	if result == command.Failed {
		c.callback.OnFailure()
		return
	}
	c.callback.OnSuccess(result)
}

// Result of a local change after a reconciliation pass
type Result struct {
	Change *LocalChange
	// Command as resubmitted, nil if the change was doomed
	Command command.Command
	// Revision of the model after the change, command.NoChange or command.Failed
	Revision int64
	Err      error
}
