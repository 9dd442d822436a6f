package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/session"
)

// ProfileBackend is the part of the museum backend used for profiles.
type ProfileBackend interface {
	UpdateVisitorProfile(ctx context.Context, id int, p domain.ProfileUpdate) (domain.Visitor, error)
}

// ProfileService completes a visitor's profile after first login.
type ProfileService struct {
	backend ProfileBackend
}

// NewProfileService constructs a ProfileService.
func NewProfileService(backend ProfileBackend) *ProfileService {
	return &ProfileService{backend: backend}
}

// Complete validates p, stores it on the backend, and updates the session
// user. Nothing is sent when validation fails.
func (s *ProfileService) Complete(ctx context.Context, st *session.State, p domain.ProfileUpdate) (domain.SessionUser, error) {
	u, err := currentUser(st)
	if err != nil {
		return domain.SessionUser{}, fmt.Errorf("service.ProfileService.Complete: %w", err)
	}

	p.Country = strings.TrimSpace(p.Country)
	p.City = strings.TrimSpace(p.City)
	p.Phone = strings.TrimSpace(p.Phone)
	if err := validateProfile(p); err != nil {
		return domain.SessionUser{}, fmt.Errorf("service.ProfileService.Complete: %w", err)
	}

	if _, err := s.backend.UpdateVisitorProfile(ctx, u.VisitorID, p); err != nil {
		return domain.SessionUser{}, fmt.Errorf("service.ProfileService.Complete: %w", err)
	}

	updated, err := st.Update(ctx, func(su *domain.SessionUser) {
		su.Country, su.City = p.Country, p.City
		su.VisitorType, su.EntryType = p.VisitorType, p.EntryType
		su.Companions = p.Companions
		su.ProfileComplete = true
	})
	if err != nil {
		return domain.SessionUser{}, fmt.Errorf("service.ProfileService.Complete: %w", err)
	}
	return updated, nil
}

// validateProfile enforces the profile form's rules.
//   - Country and city are required.
//   - Visitor type and entry type must be known values.
//   - Group entries need a companion; individual entries cannot have any.
func validateProfile(p domain.ProfileUpdate) error {
	if p.Country == "" || p.City == "" {
		return fmt.Errorf("%w: country and city of origin are required", domain.ErrValidation)
	}
	if !p.VisitorType.Valid() {
		return fmt.Errorf("%w: unknown visitor type %q", domain.ErrValidation, p.VisitorType)
	}
	if !p.EntryType.Valid() {
		return fmt.Errorf("%w: unknown entry type %q", domain.ErrValidation, p.EntryType)
	}
	if p.Companions < 0 {
		return fmt.Errorf("%w: companions cannot be negative", domain.ErrValidation)
	}
	if p.EntryType == domain.EntryGroup && p.Companions < 1 {
		return fmt.Errorf("%w: groups must have at least one companion", domain.ErrValidation)
	}
	if p.EntryType == domain.EntryIndividual && p.Companions > 0 {
		return fmt.Errorf("%w: individual entry cannot include companions", domain.ErrValidation)
	}
	if len(p.Phone) > 20 {
		return fmt.Errorf("%w: phone must be at most 20 characters", domain.ErrValidation)
	}
	return nil
}
