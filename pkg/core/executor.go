/*
 * Copyright © 2019 One Concern
 *
 */

package core

import (
	"time"

	"github.com/oneconcern/strata/pkg/change"
	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/core/status"
	"github.com/oneconcern/strata/pkg/event"
	"github.com/oneconcern/strata/pkg/metrics"
	"github.com/oneconcern/strata/pkg/model"
	"go.uber.org/zap"
)

// M describes metrics for the core package
type M struct {
	Commits metrics.CommitMetrics `group:"commits" description:"commits against models"`
}

// Executor commits commands against models.
//
// A commit runs in two phases while holding the lock of the model:
//   - check: every atomic command is checked against the current state, in order.
//     If any check fails, nothing changes and no event is emitted.
//   - apply: every change is applied, the revisions of the model and of all touched
//     entities move to the next revision, and one event is appended to the change log.
//
// Commit hooks and listeners are then notified, still in commit order, and finally the
// callback of the commit, if any.
//
// When a commit hook fails, the commit stays in memory but the model refuses any further
// commit: a hook never misses a revision. Model.HookErr reports the failure.
type Executor struct {
	metrics.Enable
	m *M

	l        *zap.Logger
	registry *event.Registry
	auth     Authorizer
	hooks    []CommitHook
}

func newExecutor() *Executor {
	return &Executor{
		auth: AllowAll{},
	}
}

func (e *Executor) apply(opts ...ExecutorOption) {
	for _, apply := range opts {
		apply(e)
	}
}

func (e *Executor) init(l *zap.Logger, registry *event.Registry) {
	e.l = l
	e.registry = registry
	if e.MetricsEnabled() {
		e.m = metrics.Ensure("core", &M{})
	}
}

// Commit a command or a transaction against a model.
//
// It returns the new revision of the model, command.NoChange or command.Failed.
func (e *Executor) Commit(m *Model, actor model.ID, cmd command.Command, opts ...CommitOption) int64 {
	start := time.Now()
	o := commitSettings(opts)

	if !e.allowed(actor, cmd) {
		return e.settle(start, m.addr, metrics.OutcomeDenied, command.Failed, 0, o)
	}

	ev, result := e.commit(m, actor, cmd)
	switch {
	case ev != nil:
		return e.settle(start, m.addr, metrics.OutcomeChanged, result, len(event.Atomics(ev)), o)
	case result == command.NoChange:
		return e.settle(start, m.addr, metrics.OutcomeNoChange, result, 0, o)
	default:
		return e.settle(start, m.addr, metrics.OutcomeFailed, result, 0, o)
	}
}

func (e *Executor) commit(m *Model, actor model.ID, cmd command.Command) (event.Event, int64) {
	m.commit.Lock()
	defer m.commit.Unlock()

	m.mx.Lock()
	if m.hookErr != nil {
		m.mx.Unlock()
		return nil, command.Failed
	}
	ev, result := e.checkAndApply(m, actor, cmd)
	if ev != nil {
		m.log.Append(ev)
	}
	m.mx.Unlock()

	if ev == nil {
		return nil, result
	}

	e.l.Debug("commit",
		zap.Stringer("model", m.addr),
		zap.Int64("revision", result),
		zap.String("actor", string(actor)),
		zap.Stringer("event", ev),
	)
	for _, hook := range e.hooks {
		if err := hook.OnCommit(m.addr, ev); err != nil {
			failed := status.ErrCommitHook.WrapWithLog(e.l, err, zap.Stringer("model", m.addr), zap.Int64("revision", result))
			m.mx.Lock()
			if m.hookErr == nil {
				m.hookErr = failed
			}
			m.mx.Unlock()
		}
	}
	e.registry.Dispatch(ev)
	return ev, result
}

// reject a command which cannot be routed to any model
func (e *Executor) reject(cmd command.Command, opts ...CommitOption) int64 {
	return e.settle(time.Now(), cmd.Target(), metrics.OutcomeFailed, command.Failed, 0, commitSettings(opts))
}

// resolve a command against a model which does not exist
func (e *Executor) resolve(actor model.ID, cmd command.Command, outcome command.Outcome, opts ...CommitOption) int64 {
	start := time.Now()
	o := commitSettings(opts)
	if !e.allowed(actor, cmd) {
		return e.settle(start, cmd.Target(), metrics.OutcomeDenied, command.Failed, 0, o)
	}
	if outcome == command.OutcomeNoChange {
		return e.settle(start, cmd.Target(), metrics.OutcomeNoChange, command.NoChange, 0, o)
	}
	return e.settle(start, cmd.Target(), metrics.OutcomeFailed, command.Failed, 0, o)
}

func (e *Executor) settle(start time.Time, addr model.Address, outcome string, result int64, events int, o commitOptions) int64 {
	if e.MetricsEnabled() {
		e.m.Commits.Committed(start, addr.String(), outcome, events)
	}
	o.notify(result)
	return result
}

func (e *Executor) allowed(actor model.ID, cmd command.Command) bool {
	for _, atomic := range command.Atomics(cmd) {
		if !e.auth.Allowed(actor, atomic.ChangedEntity(), RightWrite) {
			return false
		}
	}
	return true
}

// checkAndApply runs under the write lock of the model. It returns the event to log,
// or nil when nothing changed.
func (e *Executor) checkAndApply(m *Model, actor model.ID, cmd command.Command) (event.Event, int64) {
	changed, outcome := check(m, cmd)
	switch outcome {
	case command.OutcomeFailed:
		return nil, command.Failed
	case command.OutcomeNoChange:
		return nil, command.NoChange
	}

	oldRev := m.rev
	newRev := oldRev + 1
	oldObjectRev := model.RevisionNotSet
	if obj, ok := m.objects[cmd.Target().Object]; ok && cmd.Target().Kind() >= model.KindObject {
		oldObjectRev = obj.rev
	}

	prior := make(priorRevisions, len(changed))
	events := make([]event.Atomic, 0, len(changed))
	for _, atomic := range changed {
		events = append(events, applyCommand(m, actor, atomic, oldRev, newRev, prior))
	}
	m.rev = newRev

	if len(events) == 1 {
		return events[0], newRev
	}
	return event.NewTransactionEvent(actor, cmd.Target(), newRev, oldRev, oldObjectRev, events), newRev
}

// observable tells if the expected revisions of a command could have been observed:
// none is ahead of the model
func observable(rev int64, cmd command.Command) bool {
	for _, atomic := range command.Atomics(cmd) {
		if expected := atomic.Revision(); command.IsConcrete(expected) && expected > rev {
			return false
		}
	}
	return true
}

// check returns the atomic commands which change the model
func check(m *Model, cmd command.Command) ([]command.Atomic, command.Outcome) {
	if !observable(m.rev, cmd) {
		return nil, command.OutcomeFailed
	}
	if rc, ok := cmd.(*command.RepositoryCommand); ok {
		outcome := change.CheckMembership(!m.removed, m.rev, rc)
		if outcome != command.OutcomeChanged {
			return nil, outcome
		}
		return []command.Atomic{rc}, outcome
	}

	if m.removed || cmd.Target().ModelAddress() != m.addr {
		return nil, command.OutcomeFailed
	}

	view := modelView{m}
	switch c := cmd.(type) {
	case *command.Transaction:
		staged := change.NewChangedModel(view)
		var changed []command.Atomic
		for _, atomic := range c.Commands() {
			switch staged.ExecuteCommand(atomic) {
			case command.OutcomeFailed:
				return nil, command.OutcomeFailed
			case command.OutcomeChanged:
				changed = append(changed, atomic)
			}
		}
		if len(changed) == 0 {
			return nil, command.OutcomeNoChange
		}
		return changed, command.OutcomeChanged
	case command.Atomic:
		outcome := change.Check(view, c)
		if outcome != command.OutcomeChanged {
			return nil, outcome
		}
		return []command.Atomic{c}, outcome
	default:
		return nil, command.OutcomeFailed
	}
}
