package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/museo-companion/internal/domain"
)

// VisitRepo persists mounted visit-progress views.
type VisitRepo interface {
	// Create inserts a view for sessionID over itineraryID, started now.
	Create(ctx context.Context, sessionID uuid.UUID, itineraryID int) (domain.VisitView, error)

	// GetByID retrieves a view scoped to its owning session.
	// Returns domain.ErrNotFound if no such view belongs to the session.
	GetByID(ctx context.Context, sessionID, id uuid.UUID) (domain.VisitView, error)

	// End records the unmount time. Ending an already-ended view keeps the
	// first timestamp. Returns domain.ErrNotFound if the view does not exist.
	End(ctx context.Context, id uuid.UUID, at time.Time) error

	// MarkCompleted sets completed_at once. Returns domain.ErrConflict if the
	// view was already completed, domain.ErrNotFound if it does not exist.
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error
}

type pgVisitRepo struct {
	db db
}

// NewVisitRepo constructs a VisitRepo backed by the provided db connection.
func NewVisitRepo(db db) VisitRepo {
	return &pgVisitRepo{db: db}
}

const visitColumns = `id, session_id, itinerary_id, started_at, ended_at, completed_at`

func (r *pgVisitRepo) Create(ctx context.Context, sessionID uuid.UUID, itineraryID int) (domain.VisitView, error) {
	const q = `
		INSERT INTO visit_views (session_id, itinerary_id)
		VALUES (@session_id, @itinerary_id)
		RETURNING ` + visitColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"session_id":   sessionID,
		"itinerary_id": itineraryID,
	})
	v, err := scanVisit(row)
	if err != nil {
		return domain.VisitView{}, fmt.Errorf("repo.VisitRepo.Create: %w", err)
	}
	return v, nil
}

func (r *pgVisitRepo) GetByID(ctx context.Context, sessionID, id uuid.UUID) (domain.VisitView, error) {
	const q = `
		SELECT ` + visitColumns + `
		FROM visit_views
		WHERE id = @id AND session_id = @session_id`

	v, err := scanVisit(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "session_id": sessionID}))
	if err != nil {
		return domain.VisitView{}, fmt.Errorf("repo.VisitRepo.GetByID: %w", err)
	}
	return v, nil
}

func (r *pgVisitRepo) End(ctx context.Context, id uuid.UUID, at time.Time) error {
	const q = `
		UPDATE visit_views
		SET ended_at = COALESCE(ended_at, @at)
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "at": at})
	if err != nil {
		return fmt.Errorf("repo.VisitRepo.End: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.VisitRepo.End: %w", domain.ErrNotFound)
	}
	return nil
}

// MarkCompleted relies on the completed_at IS NULL guard so two concurrent
// completions cannot both succeed.
func (r *pgVisitRepo) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	const q = `
		UPDATE visit_views
		SET completed_at = @at
		WHERE id = @id AND completed_at IS NULL`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "at": at})
	if err != nil {
		return fmt.Errorf("repo.VisitRepo.MarkCompleted: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	const exists = `SELECT EXISTS (SELECT 1 FROM visit_views WHERE id = @id)`
	var found bool
	if err := r.db.QueryRow(ctx, exists, pgx.NamedArgs{"id": id}).Scan(&found); err != nil {
		return fmt.Errorf("repo.VisitRepo.MarkCompleted: %w", err)
	}
	if !found {
		return fmt.Errorf("repo.VisitRepo.MarkCompleted: %w", domain.ErrNotFound)
	}
	return fmt.Errorf("repo.VisitRepo.MarkCompleted: %w", domain.ErrConflict)
}

func scanVisit(s scanner) (domain.VisitView, error) {
	var (
		v         domain.VisitView
		id        pgtype.UUID
		sessionID pgtype.UUID
		ended     pgtype.Timestamptz
		completed pgtype.Timestamptz
	)
	err := s.Scan(&id, &sessionID, &v.ItineraryID, &v.StartedAt, &ended, &completed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.VisitView{}, domain.ErrNotFound
		}
		return domain.VisitView{}, err
	}
	v.ID = uuid.UUID(id.Bytes)
	v.SessionID = uuid.UUID(sessionID.Bytes)
	if ended.Valid {
		t := ended.Time
		v.EndedAt = &t
	}
	if completed.Valid {
		t := completed.Time
		v.CompletedAt = &t
	}
	return v, nil
}
