package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/budgetcal/internal/encoding"
)

type Repository interface {
	// ExportState returns a copy of all collections.
	ExportState(ctx context.Context) (*State, error)
	// ReplaceState swaps in the given collections atomically and recomputes
	// the id counters from the incoming data.
	ReplaceState(ctx context.Context, st *State) error
	// ResetState drops everything.
	ResetState(ctx context.Context) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Export captures the full state as a wire snapshot tagged with a fresh id
// and timestamp.
func (s *Service) Export(ctx context.Context) (*Snapshot, error) {
	st, err := s.repo.ExportState(ctx)
	if err != nil {
		return nil, err
	}

	return toWire(st), nil
}

// Load replaces all state with the snapshot's contents. The replace is
// all-or-nothing: a snapshot that fails validation leaves the current state
// untouched.
func (s *Service) Load(ctx context.Context, snap *Snapshot) error {
	st, err := fromWire(snap)
	if err != nil {
		return err
	}

	return s.repo.ReplaceState(ctx, st)
}

// LoadReader decodes a snapshot document from r and loads it. Files saved by
// browsers or editors are not always clean UTF-8, so the input is normalized
// first.
func (s *Service) LoadReader(ctx context.Context, r io.Reader) error {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return fmt.Errorf("normalizing snapshot encoding: %w", err)
	}

	var snap Snapshot
	if err := json.NewDecoder(utf8r).Decode(&snap); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}

	return s.Load(ctx, &snap)
}

// Reset drops all state. Exposed both over the API and for test isolation.
func (s *Service) Reset(ctx context.Context) error {
	return s.repo.ResetState(ctx)
}
