package repository

import (
	"context"

	"disputedraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LetterRepository handles database operations for letters
type LetterRepository struct {
	db *pgxpool.Pool
}

// NewLetterRepository creates a new letter repository
func NewLetterRepository(db *pgxpool.Pool) *LetterRepository {
	return &LetterRepository{db: db}
}

// Create appends a new letter record
func (r *LetterRepository) Create(ctx context.Context, letter *models.Letter) error {
	query := `
		INSERT INTO letters (
			case_id, letter_type, subject, body, tone, fallback_used
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		letter.CaseID,
		letter.LetterType,
		letter.Subject,
		letter.Body,
		letter.Tone,
		letter.FallbackUsed,
	).Scan(&letter.ID, &letter.CreatedAt, &letter.UpdatedAt)

	return err
}

// GetByID retrieves a letter by ID
func (r *LetterRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Letter, error) {
	letter := &models.Letter{}
	query := `
		SELECT id, case_id, letter_type, subject, body, tone, fallback_used, created_at, updated_at
		FROM letters
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&letter.ID,
		&letter.CaseID,
		&letter.LetterType,
		&letter.Subject,
		&letter.Body,
		&letter.Tone,
		&letter.FallbackUsed,
		&letter.CreatedAt,
		&letter.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return letter, nil
}

// ListByCaseID retrieves all letters for a case, most recent first
func (r *LetterRepository) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.Letter, error) {
	query := `
		SELECT id, case_id, letter_type, subject, body, tone, fallback_used, created_at, updated_at
		FROM letters
		WHERE case_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var letters []*models.Letter
	for rows.Next() {
		letter := &models.Letter{}
		err := rows.Scan(
			&letter.ID,
			&letter.CaseID,
			&letter.LetterType,
			&letter.Subject,
			&letter.Body,
			&letter.Tone,
			&letter.FallbackUsed,
			&letter.CreatedAt,
			&letter.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		letters = append(letters, letter)
	}

	return letters, rows.Err()
}

// UpdateContent edits a letter's subject and body in place
func (r *LetterRepository) UpdateContent(ctx context.Context, id uuid.UUID, subject, body string) error {
	query := `
		UPDATE letters SET
			subject = $2,
			body = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, subject, body)
	return err
}
