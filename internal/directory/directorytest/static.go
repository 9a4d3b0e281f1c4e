// Package directorytest provides a fixed, in-memory employee directory.
package directorytest

import (
	"context"
	"sync"

	"go-hris-leave/internal/directory"
	directoryerrors "go-hris-leave/internal/directory/errors"
)

type Static struct {
	mu        sync.Mutex
	Profiles  map[int64]directory.Profile
	Reviewers map[int64]directory.Reviewers
	Lookups   int
}

func NewStatic() *Static {
	return &Static{
		Profiles:  map[int64]directory.Profile{},
		Reviewers: map[int64]directory.Reviewers{},
	}
}

func (s *Static) GetProfile(_ context.Context, employeeID int64) (directory.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Lookups++
	p, ok := s.Profiles[employeeID]
	if !ok {
		return directory.Profile{}, directoryerrors.ErrEmployeeNotFound
	}
	return p, nil
}

func (s *Static) GetReviewers(_ context.Context, employeeID int64) (directory.Reviewers, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.Reviewers[employeeID]
	if !ok {
		return directory.Reviewers{}, directoryerrors.ErrReviewerNotConfigured
	}
	return r, nil
}

func (s *Static) InvalidateProfile(context.Context, int64) error { return nil }
