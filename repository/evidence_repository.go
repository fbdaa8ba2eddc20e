package repository

import (
	"context"

	"disputedraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EvidenceRepository handles database operations for evidence items
type EvidenceRepository struct {
	db *pgxpool.Pool
}

// NewEvidenceRepository creates a new evidence repository
func NewEvidenceRepository(db *pgxpool.Pool) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

const evidenceColumns = `id, case_id, filename, mime_type, size, storage_path,
		analysis_state, findings, included_in_letter, context, created_at, updated_at`

// Create creates a new evidence item record
func (r *EvidenceRepository) Create(ctx context.Context, item *models.EvidenceItem) error {
	query := `
		INSERT INTO evidence_items (
			case_id, filename, mime_type, size, storage_path,
			analysis_state, included_in_letter, context
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	if item.AnalysisState == "" {
		item.AnalysisState = models.EvidenceUnanalyzed
	}

	err := r.db.QueryRow(
		ctx, query,
		item.CaseID,
		item.Filename,
		item.MimeType,
		item.Size,
		item.StoragePath,
		item.AnalysisState,
		item.IncludedInLetter,
		item.Context,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)

	return err
}

func scanEvidence(row interface{ Scan(dest ...any) error }) (*models.EvidenceItem, error) {
	item := &models.EvidenceItem{}
	err := row.Scan(
		&item.ID,
		&item.CaseID,
		&item.Filename,
		&item.MimeType,
		&item.Size,
		&item.StoragePath,
		&item.AnalysisState,
		&item.Findings,
		&item.IncludedInLetter,
		&item.Context,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetByID retrieves an evidence item by ID
func (r *EvidenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.EvidenceItem, error) {
	query := `SELECT ` + evidenceColumns + ` FROM evidence_items WHERE id = $1`
	return scanEvidence(r.db.QueryRow(ctx, query, id))
}

// ListByCaseID retrieves all evidence items for a case, oldest first so batch
// analysis order matches upload order.
func (r *EvidenceRepository) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.EvidenceItem, error) {
	query := `SELECT ` + evidenceColumns + ` FROM evidence_items WHERE case_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.EvidenceItem
	for rows.Next() {
		item, err := scanEvidence(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// UpdateAnalysis sets an item's analysis state and findings together
func (r *EvidenceRepository) UpdateAnalysis(ctx context.Context, id uuid.UUID, state models.EvidenceAnalysisState, findings *models.EvidenceFindings) error {
	query := `
		UPDATE evidence_items SET
			analysis_state = $2,
			findings = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, state, findings)
	return err
}

// UpdateContext overwrites an item's complainant context
func (r *EvidenceRepository) UpdateContext(ctx context.Context, id uuid.UUID, text string) error {
	query := `
		UPDATE evidence_items SET
			context = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, text)
	return err
}

// SetIncluded flips an item's included-in-letter flag
func (r *EvidenceRepository) SetIncluded(ctx context.Context, id uuid.UUID, included bool) error {
	query := `
		UPDATE evidence_items SET
			included_in_letter = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, included)
	return err
}

// Delete deletes an evidence item record
func (r *EvidenceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM evidence_items WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
