package archive

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Selector picks the backend for the current run. The preferred backend is
// probed once per run; when the probe fails, the fallback is used for the rest
// of the run and onFallback is called exactly once.
type Selector struct {
	preferred Backend
	fallback  Backend

	onFallback func(ctx context.Context, preferred, fallback string)

	mu     sync.Mutex
	probed bool
	chosen Backend
}

func NewSelector(preferred, fallback Backend, onFallback func(ctx context.Context, preferred, fallback string)) *Selector {
	return &Selector{
		preferred:  preferred,
		fallback:   fallback,
		onFallback: onFallback,
	}
}

// NewBackend returns the backend for a configured format name.
func NewBackend(format, sevenZipPath string, run CommandRunner) (Backend, error) {
	switch strings.ToLower(format) {
	case FormatZip:
		return NewZip(), nil
	case FormatSevenZip:
		return NewSevenZip(sevenZipPath, run), nil
	default:
		return nil, errors.Errorf("unsupported archive format %q", format)
	}
}

func (s *Selector) Pick(ctx context.Context) (Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.probed {
		return s.chosen, nil
	}

	if s.preferred.Available(ctx) {
		s.chosen = s.preferred
	} else {
		if s.fallback == nil || !s.fallback.Available(ctx) {
			return nil, errors.Wrapf(ErrBackendUnavailable, "%s", s.preferred.Format())
		}

		s.chosen = s.fallback

		if s.onFallback != nil {
			s.onFallback(ctx, s.preferred.Format(), s.fallback.Format())
		}
	}

	s.probed = true

	return s.chosen, nil
}

// Reset forgets the probe result so the next run probes again.
func (s *Selector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.probed = false
	s.chosen = nil
}
