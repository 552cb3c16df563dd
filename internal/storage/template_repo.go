package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/email-builder/internal/model"
)

const templateColumns = `id, user_id, name, config, layout, created_at, updated_at`

// TemplateRepository scopes every lookup and write by (id, user_id).
type TemplateRepository struct {
	db *Database
}

func NewTemplateRepository(db *Database) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(ctx context.Context, t *model.Template) (*model.Template, error) {
	var tpl model.Template
	query := `
		INSERT INTO templates (user_id, name, config, layout)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + templateColumns
	err := r.db.QueryRowxContext(ctx, query, t.UserID, t.Name, t.Config, t.Layout).StructScan(&tpl)
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return &tpl, nil
}

func (r *TemplateRepository) FindOwned(ctx context.Context, id, userID string) (*model.Template, error) {
	var tpl model.Template
	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = $1 AND user_id = $2`
	err := r.db.GetContext(ctx, &tpl, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find template: %w", err)
	}
	return &tpl, nil
}

// ListByOwner returns the owner's templates, newest first.
func (r *TemplateRepository) ListByOwner(ctx context.Context, userID string) ([]model.Template, error) {
	tpls := []model.Template{}
	query := `SELECT ` + templateColumns + ` FROM templates WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &tpls, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return tpls, nil
}

// Update replaces name and config. It returns nil when no owned row matched.
func (r *TemplateRepository) Update(ctx context.Context, t *model.Template) (*model.Template, error) {
	var tpl model.Template
	query := `
		UPDATE templates SET name = $1, config = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
		RETURNING ` + templateColumns
	err := r.db.QueryRowxContext(ctx, query, t.Name, t.Config, time.Now(), t.ID, t.UserID).StructScan(&tpl)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return &tpl, nil
}

// Delete reports whether an owned row was removed.
func (r *TemplateRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	query := `DELETE FROM templates WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete template: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete template: %w", err)
	}
	return rows > 0, nil
}
