package service

import (
	"context"
	"fmt"

	"github.com/pkordes/museo-companion/internal/domain"
)

// AreaBackend is the part of the museum backend that serves areas.
type AreaBackend interface {
	ListAreas(ctx context.Context) ([]domain.Area, error)
	GetArea(ctx context.Context, id int) (domain.Area, error)
}

// AreaService serves the museum's area reference data.
type AreaService struct {
	backend AreaBackend
}

// NewAreaService constructs an AreaService.
func NewAreaService(backend AreaBackend) *AreaService {
	return &AreaService{backend: backend}
}

// List returns the active areas. Always returns a non-nil slice.
func (s *AreaService) List(ctx context.Context) ([]domain.Area, error) {
	areas, err := s.backend.ListAreas(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.AreaService.List: %w", err)
	}
	if areas == nil {
		return []domain.Area{}, nil
	}
	return areas, nil
}

// Get returns one area. Returns domain.ErrNotFound if the backend has none.
func (s *AreaService) Get(ctx context.Context, id int) (domain.Area, error) {
	a, err := s.backend.GetArea(ctx, id)
	if err != nil {
		return domain.Area{}, fmt.Errorf("service.AreaService.Get: %w", err)
	}
	return a, nil
}
