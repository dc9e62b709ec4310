/*
 * Copyright © 2019 One Concern
 *
 */

package core

import (
	"sync"

	"github.com/oneconcern/strata/pkg/change"
	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/dlogger"
	"github.com/oneconcern/strata/pkg/event"
	"github.com/oneconcern/strata/pkg/model"
	"go.uber.org/zap"
)

var _ model.ReadableRepository = &Repository{}

// Repository holds models. A repository has no revision of its own.
type Repository struct {
	addr     model.Address
	l        *zap.Logger
	registry *event.Registry
	executor *Executor

	mx     sync.RWMutex
	models map[model.ID]*Model // including tombstones
}

// RepositoryOption is a functor to build a repository with some options
type RepositoryOption func(*Repository)

// Logger injects a logger into the repository and its executor
func Logger(l *zap.Logger) RepositoryOption {
	return func(r *Repository) {
		if l != nil {
			r.l = l
		}
	}
}

// Registry shares a listener registry with other repositories
func Registry(registry *event.Registry) RepositoryOption {
	return func(r *Repository) {
		if registry != nil {
			r.registry = registry
		}
	}
}

// WithExecutorOptions configures the executor of this repository
func WithExecutorOptions(opts ...ExecutorOption) RepositoryOption {
	return func(r *Repository) {
		r.executor.apply(opts...)
	}
}

func defaultRepository(id model.ID) *Repository {
	return &Repository{
		addr:     model.RepositoryAddress(id),
		l:        dlogger.MustGetLogger(dlogger.LogLevelInfo, dlogger.Component("core")),
		registry: event.NewRegistry(),
		executor: newExecutor(),
		models:   make(map[model.ID]*Model),
	}
}

// NewRepository builds an empty repository
func NewRepository(id model.ID, opts ...RepositoryOption) (*Repository, error) {
	if _, err := model.NewID(string(id)); err != nil {
		return nil, err
	}
	r := defaultRepository(id)
	for _, apply := range opts {
		apply(r)
	}
	r.executor.init(r.l, r.registry)
	return r, nil
}

// ID of the repository
func (r *Repository) ID() model.ID { return r.addr.Repository }

// Address of the repository
func (r *Repository) Address() model.Address { return r.addr }

// Registry of listeners
func (r *Repository) Registry() *event.Registry { return r.registry }

// Executor used to commit commands against the models of this repository
func (r *Repository) Executor() *Executor { return r.executor }

// HasModel tells if a model exists
func (r *Repository) HasModel(id model.ID) bool {
	return r.GetModel(id) != nil
}

// Model by ID, nil if it does not exist
func (r *Repository) Model(id model.ID) model.ReadableModel {
	if m := r.GetModel(id); m != nil {
		return m
	}
	return nil
}

// GetModel returns the live model, or nil if it does not exist or was removed
func (r *Repository) GetModel(id model.ID) *Model {
	m := r.lookup(id)
	if m == nil || m.IsRemoved() {
		return nil
	}
	return m
}

// ModelIDs of the existing models, in ascending order
func (r *Repository) ModelIDs() []model.ID {
	r.mx.RLock()
	models := make(map[model.ID]*Model, len(r.models))
	for id, m := range r.models {
		models[id] = m
	}
	r.mx.RUnlock()

	for id, m := range models {
		if m.IsRemoved() {
			delete(models, id)
		}
	}
	return model.SortedIDs(models)
}

// tombstone returns the model with this ID, including removed models, allocating one if needed
func (r *Repository) tombstone(id model.ID) *Model {
	r.mx.Lock()
	defer r.mx.Unlock()
	m, ok := r.models[id]
	if !ok {
		m = newModel(r, id)
		r.models[id] = m
	}
	return m
}

// ChangeLog of a model, including removed models. It returns nil for unknown models.
func (r *Repository) ChangeLog(id model.ID) *ChangeLog {
	if m := r.lookup(id); m != nil {
		return m.log
	}
	return nil
}

// CreateModel returns the model with this ID, creating it if it does not exist
func (r *Repository) CreateModel(actor model.ID, id model.ID) (*Model, error) {
	cmd, err := command.AddModel(r.addr, id, true)
	if err != nil {
		return nil, err
	}
	r.ExecuteCommand(actor, cmd)
	if err := r.HookErr(id); err != nil {
		return nil, err
	}
	return r.GetModel(id), nil
}

// RemoveModel removes a model and its content. It tells if the model existed.
func (r *Repository) RemoveModel(actor model.ID, id model.ID) (bool, error) {
	cmd, err := command.RemoveModel(r.addr, id, command.RevForced)
	if err != nil {
		return false, err
	}
	result := r.ExecuteCommand(actor, cmd)
	if err := r.HookErr(id); err != nil {
		return false, err
	}
	return result >= 0, nil
}

// HookErr returns the commit hook failure recorded on a model, including removed models.
// Such a model refuses every further commit.
func (r *Repository) HookErr(id model.ID) error {
	if m := r.lookup(id); m != nil {
		return m.HookErr()
	}
	return nil
}

// TargetModel returns the ID of the model a command commits to
func TargetModel(cmd command.Command) model.ID {
	if rc, ok := cmd.(*command.RepositoryCommand); ok {
		return rc.ModelID()
	}
	return cmd.Target().Model
}

// ExecuteCommand commits a command against this repository or one of its models.
//
// It returns the new revision of the model, command.NoChange or command.Failed.
func (r *Repository) ExecuteCommand(actor model.ID, cmd command.Command, opts ...CommitOption) int64 {
	if cmd.Target().Repository != r.addr.Repository {
		return r.executor.reject(cmd, opts...)
	}

	if rc, ok := cmd.(*command.RepositoryCommand); ok {
		if rc.ChangeType() == command.Add {
			return r.executor.Commit(r.tombstone(rc.ModelID()), actor, cmd, opts...)
		}
		m := r.lookup(rc.ModelID())
		if m == nil {
			return r.executor.resolve(actor, cmd, change.CheckMembership(false, model.RevisionNotSet, cmd), opts...)
		}
		return r.executor.Commit(m, actor, cmd, opts...)
	}

	m := r.lookup(cmd.Target().Model)
	if m == nil {
		return r.executor.reject(cmd, opts...)
	}
	return r.executor.Commit(m, actor, cmd, opts...)
}

// lookup a model, including tombstones
func (r *Repository) lookup(id model.ID) *Model {
	r.mx.RLock()
	defer r.mx.RUnlock()
	return r.models[id]
}

// Subscribe a listener to the events of some entity of this repository and its content
func (r *Repository) Subscribe(addr model.Address, listener event.Listener) *event.Subscription {
	return r.registry.Subscribe(addr, listener)
}
