package container

import (
	"context"

	"github.com/appwire/framework/pkg/errors"
)

type stackEntry struct {
	name    string
	release ReleaseFunc
}

// resourceStack records acquired resources in order and releases them in
// reverse. Every release runs even when earlier ones fail.
type resourceStack struct {
	entries []stackEntry
}

func (s *resourceStack) push(name string, release ReleaseFunc) {
	s.entries = append(s.entries, stackEntry{name: name, release: release})
}

func (s *resourceStack) len() int { return len(s.entries) }

func (s *resourceStack) unwind(ctx context.Context) error {
	var errs []error
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.release == nil {
			continue
		}
		if err := e.release(ctx); err != nil {
			errs = append(errs, ErrRelease.WithDetail("resource", e.name).WithCause(err))
		}
	}
	s.entries = nil
	return errors.Join(errs...)
}
