package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/models/gorm"
)

// LoginHistoryRepo keeps the most recent logins using raw SQL.
type LoginHistoryRepo struct {
	db    *sqlx.DB
	limit int
}

func NewLoginHistoryRepo(db *sqlx.DB) *LoginHistoryRepo {
	return &LoginHistoryRepo{db: db, limit: constants.LoginHistoryLimit}
}

// Insert stores a login and trims the table to the newest entries.
func (r *LoginHistoryRepo) Insert(ctx context.Context, event *gorm.LoginEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin login insert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, constants.InsertLoginEvent, event); err != nil {
		return fmt.Errorf("failed to insert login: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(constants.TrimLoginHistory), r.limit); err != nil {
		return fmt.Errorf("failed to trim login history: %w", err)
	}
	return tx.Commit()
}

// ListRecent returns up to limit logins, newest first.
func (r *LoginHistoryRepo) ListRecent(ctx context.Context, limit int) ([]gorm.LoginEvent, error) {
	if limit <= 0 || limit > r.limit {
		limit = r.limit
	}

	events := []gorm.LoginEvent{}
	if err := r.db.SelectContext(ctx, &events, r.db.Rebind(constants.ListRecentLogins), limit); err != nil {
		return nil, fmt.Errorf("failed to list logins: %w", err)
	}
	return events, nil
}
