package layer

import (
	"context"
	"fmt"
)

type Repository interface {
	CreateLayer(ctx context.Context, l *Layer) error
	GetLayer(ctx context.Context, id int64) (*Layer, error)
	UpdateLayer(ctx context.Context, l *Layer) error
	// DeleteLayer removes the layer and deletes (not unassigns) every item
	// on it.
	DeleteLayer(ctx context.Context, id int64) error
	// ToggleLayer flips the active flag and returns the new state.
	ToggleLayer(ctx context.Context, id int64) (*Layer, error)
	ListLayers(ctx context.Context, accountID int64) ([]*Layer, error)
	ListAllLayers(ctx context.Context) ([]*Layer, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, l *Layer) (*Layer, error) {
	if l.Name == "" {
		return nil, fmt.Errorf("layer name is required")
	}

	l.IsActive = true

	if err := s.repo.CreateLayer(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Layer, error) {
	return s.repo.GetLayer(ctx, id)
}

func (s *Service) Rename(ctx context.Context, id int64, name string) (*Layer, error) {
	if name == "" {
		return nil, fmt.Errorf("layer name is required")
	}

	l, err := s.repo.GetLayer(ctx, id)
	if err != nil {
		return nil, err
	}

	l.Name = name
	if err := s.repo.UpdateLayer(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

func (s *Service) Toggle(ctx context.Context, id int64) (*Layer, error) {
	return s.repo.ToggleLayer(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteLayer(ctx, id)
}

func (s *Service) List(ctx context.Context, accountID int64) ([]*Layer, error) {
	return s.repo.ListLayers(ctx, accountID)
}

func (s *Service) ListAll(ctx context.Context) ([]*Layer, error) {
	return s.repo.ListAllLayers(ctx)
}

// LayerStates implements the item service's layer filter source.
func (s *Service) LayerStates(ctx context.Context, accountID int64) (map[int64]bool, error) {
	layers, err := s.repo.ListLayers(ctx, accountID)
	if err != nil {
		return nil, err
	}

	states := make(map[int64]bool, len(layers))
	for _, l := range layers {
		states[l.ID] = l.IsActive
	}

	return states, nil
}
