/*
 * Copyright © 2019 One Concern
 *
 */

package core

import (
	"context"

	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/core/status"
	"github.com/oneconcern/strata/pkg/event"
	"github.com/oneconcern/strata/pkg/model"
)

// Store exposes a repository through the contract shared by local and remote stores
type Store struct {
	repo *Repository
}

// NewStore builds an in-process store over a repository
func NewStore(repo *Repository) *Store {
	return &Store{repo: repo}
}

// Repository behind this store
func (s *Store) Repository() *Repository { return s.repo }

// ExecuteCommand commits a command on behalf of an actor.
//
// It returns the new revision of the model, command.NoChange or command.Failed.
// The error reports a commit hook failure on the target model.
func (s *Store) ExecuteCommand(ctx context.Context, actor model.ID, cmd command.Command) (int64, error) {
	if err := ctx.Err(); err != nil {
		return command.Failed, err
	}
	result := s.repo.ExecuteCommand(actor, cmd)
	if cmd.Target().Repository != s.repo.ID() {
		return result, nil
	}
	return result, s.repo.HookErr(TargetModel(cmd))
}

// ModelSnapshot returns a detached copy of a model
func (s *Store) ModelSnapshot(ctx context.Context, addr model.Address) (*model.ModelState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := s.repo.ModelAt(addr)
	if m == nil {
		return nil, status.ErrNotFound.WrapMessage(addr.String())
	}
	return m.Snapshot(), nil
}

// ModelRevision returns the current revision of a model
func (s *Store) ModelRevision(ctx context.Context, addr model.Address) (int64, error) {
	if err := ctx.Err(); err != nil {
		return model.RevisionNotSet, err
	}
	m := s.repo.ModelAt(addr)
	if m == nil {
		return model.RevisionNotSet, status.ErrNotFound.WrapMessage(addr.String())
	}
	return m.Revision(), nil
}

// Events returns the events of a model with a revision strictly greater than since.
// Events of removed models remain available.
func (s *Store) Events(ctx context.Context, addr model.Address, since int64) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if addr.Repository != s.repo.ID() || addr.Model.IsZero() {
		return nil, status.ErrNotFound.WrapMessage(addr.String())
	}
	log := s.repo.ChangeLog(addr.Model)
	if log == nil {
		return nil, status.ErrNotFound.WrapMessage(addr.String())
	}
	return log.Since(since), nil
}
