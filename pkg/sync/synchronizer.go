/*
 * Copyright © 2019 One Concern
 *
 */

package sync

import (
	"context"
	"fmt"
	"sync"

	"github.com/oneconcern/strata/pkg/change"
	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/core"
	corestatus "github.com/oneconcern/strata/pkg/core/status"
	"github.com/oneconcern/strata/pkg/dlogger"
	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/event"
	"github.com/oneconcern/strata/pkg/metrics"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/sync/status"
	"go.uber.org/zap"
)

// Remote is the store holding the reference replica of a model
type Remote interface {
	ExecuteCommand(ctx context.Context, actor model.ID, cmd command.Command) (int64, error)
	ModelRevision(ctx context.Context, addr model.Address) (int64, error)
	Events(ctx context.Context, addr model.Address, since int64) ([]event.Event, error)
}

var _ Remote = &core.Store{}

// M describes metrics for the sync package
type M struct {
	Sync metrics.SyncMetrics `group:"sync" description:"reconciliation of local changes with remote events"`
}

// Synchronizer queues local changes against a local replica of a model, and reconciles
// them with the changes which happened remotely.
//
// The local model must only be changed through its synchronizer.
//
// Once the replicas have diverged, every call fails with status.ErrDiverged: the local
// replica must be rebuilt from the remote, with a new synchronizer.
type Synchronizer struct {
	metrics.Enable
	m *M

	l     *zap.Logger
	actor model.ID
	local *core.Model

	syncing sync.Mutex

	mx         sync.Mutex
	checkpoint int64
	optimistic int64
	view       *change.ChangedModel
	queue      []*LocalChange
	diverged   error
}

// New synchronizer for a local replica
func New(local *core.Model, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		l:     dlogger.MustGetLogger(dlogger.LogLevelInfo, dlogger.Component("sync")),
		actor: DefaultActor,
		local: local,
	}
	for _, apply := range opts {
		apply(s)
	}
	if s.MetricsEnabled() {
		s.m = metrics.Ensure("sync", &M{})
	}
	s.reset()
	return s
}

// reset the optimistic view over the local model, with an empty queue
func (s *Synchronizer) reset() {
	s.checkpoint = s.local.Revision()
	s.optimistic = s.checkpoint
	s.view = change.NewChangedModel(s.local)
	s.queue = nil
	if s.MetricsEnabled() {
		s.m.Sync.Queue(s.local.Address().String(), 0)
	}
}

// Local model
func (s *Synchronizer) Local() *core.Model { return s.local }

// Checkpoint is the revision of the local model when the queue was last reconciled
func (s *Synchronizer) Checkpoint() int64 {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.checkpoint
}

// Diverged returns the error which broke the synchronization of the replicas, if any
func (s *Synchronizer) Diverged() error {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.diverged
}

// Pending local changes, in staging order
func (s *Synchronizer) Pending() []*LocalChange {
	s.mx.Lock()
	defer s.mx.Unlock()
	cp := make([]*LocalChange, len(s.queue))
	copy(cp, s.queue)
	return cp
}

// View returns a detached copy of the optimistic state: the local model with all
// pending changes applied
func (s *Synchronizer) View() *model.ModelState {
	s.mx.Lock()
	defer s.mx.Unlock()
	return model.CopyModel(s.view)
}

// StageLocal queues a command until the next reconciliation.
//
// The command is checked against the optimistic state: it fails with status.ErrPrecondition
// when it cannot succeed there.
func (s *Synchronizer) StageLocal(cmd command.Command, opts ...ChangeOption) (*LocalChange, error) {
	if err := s.inScope(cmd); err != nil {
		return nil, err
	}
	o := changeOptions{actor: s.actor}
	for _, apply := range opts {
		apply(&o)
	}

	s.mx.Lock()
	defer s.mx.Unlock()
	if s.diverged != nil {
		return nil, s.diverged
	}

	optimistic := command.NoChange
	switch s.view.ExecuteCommand(cmd) {
	case command.OutcomeFailed:
		return nil, status.ErrPrecondition.WrapMessage(cmd.String())
	case command.OutcomeChanged:
		s.optimistic++
		optimistic = s.optimistic
	}

	c := newLocalChange(cmd, optimistic, o)
	s.queue = append(s.queue, c)
	if s.MetricsEnabled() {
		s.m.Sync.Queue(s.local.Address().String(), len(s.queue))
	}
	return c, nil
}

func (s *Synchronizer) inScope(cmd command.Command) error {
	if len(command.Atomics(cmd)) == 0 {
		return status.ErrPrecondition.WrapMessage(fmt.Sprintf("unsupported command %T", cmd))
	}
	if _, ok := cmd.(*command.RepositoryCommand); ok {
		return status.ErrPrecondition.WrapMessage("models cannot be added or removed locally")
	}
	if cmd.Target().ModelAddress() != s.local.Address() {
		return corestatus.ErrWrongModel.WrapMessage(cmd.String())
	}
	return nil
}

// Reconcile applies the remote events which happened after the checkpoint, then rebases
// and resubmits the pending local changes. Every pending change is resolved, in order.
//
// Events at or before the checkpoint must be the ones of the local change log. When remote
// events cannot be replicated, every pending change fails with status.ErrDiverged.
//
// Listeners of the local model are notified during the pass: they must not stage local changes.
func (s *Synchronizer) Reconcile(events []event.Event) ([]Result, error) {
	s.mx.Lock()
	results, err := s.reconcile(events)
	s.mx.Unlock()

	resolve(results)
	return results, err
}

func resolve(results []Result) {
	for _, r := range results {
		r.Change.resolve(r.Revision, r.Err)
	}
}

func (s *Synchronizer) reconcile(events []event.Event) ([]Result, error) {
	if s.diverged != nil {
		return nil, s.diverged
	}
	addr := s.local.Address().String()
	remote, err := s.replicate(events)
	if err != nil {
		return s.abandon(err)
	}
	if s.MetricsEnabled() && len(remote) > 0 {
		s.m.Sync.Replicated(addr, len(remote))
	}

	touched := touchedEntities(remote)
	shift := int64(len(remote))
	results := make([]Result, 0, len(s.queue))
	for _, c := range s.queue {
		results = append(results, s.resolved(s.resubmit(c, touched, shift)))
	}
	s.reset()
	return results, nil
}

// diverge marks the replicas as diverged. Callers hold the lock.
func (s *Synchronizer) diverge(err error) error {
	diverged := err
	if !errors.Is(err, status.ErrDiverged) {
		diverged = status.ErrDiverged.Wrap(err)
	}
	s.l.Error("replicas have diverged",
		zap.Stringer("model", s.local.Address()),
		zap.Int64("checkpoint", s.checkpoint),
		zap.Error(err),
	)
	s.diverged = diverged
	return diverged
}

// abandon fails every pending change once the replicas have diverged. Callers hold the lock.
func (s *Synchronizer) abandon(err error) ([]Result, error) {
	diverged := s.diverge(err)
	results := make([]Result, 0, len(s.queue))
	for _, c := range s.queue {
		results = append(results, s.resolved(Result{Change: c, Revision: command.Failed, Err: diverged}))
	}
	s.reset()
	return results, diverged
}

// replicate remote events locally. It returns the events actually applied.
func (s *Synchronizer) replicate(events []event.Event) ([]event.Event, error) {
	applied := make([]event.Event, 0, len(events))
	next := s.checkpoint + 1
	for _, e := range events {
		if e.Revision() < next {
			if known := s.local.ChangeLog().Event(e.Revision()); !event.SameChange(known, e) {
				return applied, status.ErrDiverged.WrapMessage(fmt.Sprintf("remote event %v differs from the local change log", e))
			}
			continue
		}
		if e.Revision() != next {
			return applied, status.ErrDiverged.WrapMessage(fmt.Sprintf("expected remote revision %d, got %v", next, e))
		}
		if _, err := s.local.Replay(e); err != nil {
			return applied, err
		}
		applied = append(applied, e)
		next++
	}
	return applied, nil
}

func (s *Synchronizer) resubmit(c *LocalChange, touched []model.Address, shift int64) Result {
	cmd, rewritten, doomed := rebase(c.cmd, touched, shift)
	if doomed {
		s.l.Info("local change conflicts with remote changes",
			zap.Stringer("model", s.local.Address()),
			zap.Stringer("command", c.cmd),
			zap.String("actor", string(c.actor)),
		)
		return Result{Change: c, Revision: command.Failed, Err: status.ErrConflict.WrapMessage(c.cmd.String())}
	}
	if rewritten && s.MetricsEnabled() {
		s.m.Sync.Rewrite(s.local.Address().String())
	}

	rev := s.local.ExecuteCommand(c.actor, cmd)
	r := Result{Change: c, Command: cmd, Revision: rev}
	if rev == command.Failed {
		r.Err = status.ErrConflict.WrapMessage(fmt.Sprintf("%v was rejected", cmd))
	}
	return r
}

func (s *Synchronizer) resolved(r Result) Result {
	if !s.MetricsEnabled() {
		return r
	}
	outcome := metrics.OutcomeChanged
	switch r.Revision {
	case command.Failed:
		outcome = metrics.OutcomeFailed
	case command.NoChange:
		outcome = metrics.OutcomeNoChange
	}
	s.m.Sync.Resolve(s.local.Address().String(), outcome)
	return r
}

// Synchronize pulls the events of the remote replica since the checkpoint, reconciles
// the pending local changes with them, then pushes the resubmitted commands to the remote.
//
// Local changes are resolved once the remote confirmed them. Each pushed command must produce
// the same revision remotely as it did locally: otherwise the replicas have diverged, the
// unconfirmed changes fail with status.ErrDiverged and so does every later call.
func (s *Synchronizer) Synchronize(ctx context.Context, remote Remote) ([]Result, error) {
	s.syncing.Lock()
	defer s.syncing.Unlock()

	if err := s.Diverged(); err != nil {
		return nil, err
	}

	addr := s.local.Address()
	checkpoint := s.Checkpoint()
	remoteRev, err := remote.ModelRevision(ctx, addr)
	if err != nil && !errors.Is(err, corestatus.ErrNotFound) {
		return nil, err
	}
	if err == nil && remoteRev < checkpoint {
		s.mx.Lock()
		results, err := s.abandon(status.ErrDiverged.WrapMessage(fmt.Sprintf("remote %v is at revision %d, behind local revision %d", addr, remoteRev, checkpoint)))
		s.mx.Unlock()
		resolve(results)
		return results, err
	}

	events, err := remote.Events(ctx, addr, checkpoint)
	if err != nil {
		return nil, err
	}

	s.mx.Lock()
	results, err := s.reconcile(events)
	s.mx.Unlock()
	if err != nil {
		resolve(results)
		return results, err
	}

	err = s.push(ctx, remote, results)
	resolve(results)
	return results, err
}

// push the resubmitted commands to the remote, in order. Changes which are not confirmed
// by the remote are turned into failures.
func (s *Synchronizer) push(ctx context.Context, remote Remote, results []Result) error {
	for i, r := range results {
		if r.Revision < 0 {
			continue
		}

		rev, err := remote.ExecuteCommand(ctx, r.Change.actor, r.Command)
		if err == nil && rev != r.Revision {
			err = status.ErrDiverged.WrapMessage(fmt.Sprintf("%v yields revision %d remotely, %d locally", r.Command, rev, r.Revision))
		}
		if err == nil {
			continue
		}

		s.mx.Lock()
		diverged := s.diverge(err)
		s.mx.Unlock()
		for j := i; j < len(results); j++ {
			if results[j].Revision >= 0 {
				results[j].Revision = command.Failed
				results[j].Err = diverged
			}
		}
		return diverged
	}
	return nil
}

// touchedEntities lists the entities changed by some events
func touchedEntities(events []event.Event) []model.Address {
	var touched []model.Address
	for _, e := range events {
		for _, atomic := range event.Atomics(e) {
			touched = append(touched, atomic.ChangedEntity())
		}
	}
	return touched
}

// rebase a command on remote events. It tells if the command was rewritten, or if it is doomed.
func rebase(cmd command.Command, touched []model.Address, shift int64) (command.Command, bool, bool) {
	tx, isTx := cmd.(*command.Transaction)
	if !isTx {
		atomic, ok := cmd.(command.Atomic)
		if !ok {
			return nil, false, true
		}
		rebased, rewritten, doomed := rebaseAtomic(atomic, touched, shift)
		if doomed {
			return nil, false, true
		}
		return rebased, rewritten, false
	}

	commands := make([]command.Command, 0, tx.Len())
	changed := false
	for _, atomic := range tx.Commands() {
		rebased, rewritten, doomed := rebaseAtomic(atomic, touched, shift)
		if doomed {
			return nil, false, true
		}
		changed = changed || rewritten
		commands = append(commands, rebased)
	}
	if !changed {
		return cmd, false, false
	}
	rebased, err := command.NewTransaction(tx.Target(), commands...)
	if err != nil {
		return nil, false, true
	}
	return rebased, true, false
}

func rebaseAtomic(atomic command.Atomic, touched []model.Address, shift int64) (command.Atomic, bool, bool) {
	rev := atomic.Revision()
	if atomic.IsForced() || !command.IsConcrete(rev) || shift == 0 {
		return atomic, false, false
	}
	entity := atomic.ChangedEntity()
	for _, addr := range touched {
		if entity.Contains(addr) || addr.Contains(entity) {
			return nil, false, true
		}
	}
	return atomic.WithRevision(rev + shift), true, false
}
