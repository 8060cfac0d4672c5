package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kaiva-ai/kaiva/internal/domain"
)

// AbstractRepository handles abstract workbook storage
type AbstractRepository struct {
	db *DB
}

// NewAbstractRepository creates a new abstract repository
func NewAbstractRepository(db *DB) *AbstractRepository {
	return &AbstractRepository{db: db}
}

// Create stores a new abstract
func (r *AbstractRepository) Create(ctx context.Context, abstract *domain.Abstract) error {
	if abstract.Filename == "" {
		return fmt.Errorf("%w: abstract filename is required", domain.ErrInvalidRequest)
	}
	if abstract.CreatedAt.IsZero() {
		abstract.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO abstracts (filename, source, content, created_at)
		VALUES (?, ?, ?, ?)
	`, abstract.Filename, abstract.Source, abstract.Content, abstract.CreatedAt)

	return err
}

// Get retrieves an abstract by filename
func (r *AbstractRepository) Get(ctx context.Context, filename string) (*domain.Abstract, error) {
	abstract := &domain.Abstract{}
	var source sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT filename, source, content, created_at
		FROM abstracts WHERE filename = ?
	`, filename).Scan(&abstract.Filename, &source, &abstract.Content, &abstract.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if source.Valid {
		abstract.Source = source.String
	}

	return abstract, nil
}

// Count returns the number of stored abstracts
func (r *AbstractRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM abstracts`).Scan(&count)
	return count, err
}

// DeleteBefore removes abstracts created before cutoff
func (r *AbstractRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM abstracts WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
