package repository

import (
	"context"
	"fmt"

	"disputedraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CaseRepository handles database operations for cases
type CaseRepository struct {
	db *pgxpool.Pool
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: db}
}

const caseColumns = `id, user_id, status, title, organization_name, description,
		incident_date, incident_end_date, purchase_amount, currency,
		desired_outcomes, jurisdiction, payment_method, organization_response,
		analysis, created_at, updated_at`

// Create creates a new case
func (r *CaseRepository) Create(ctx context.Context, c *models.Case) error {
	query := `
		INSERT INTO cases (
			user_id, status, title, organization_name, description,
			incident_date, incident_end_date, purchase_amount, currency,
			desired_outcomes, jurisdiction, payment_method, organization_response,
			analysis
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		) RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		c.UserID,
		c.Status,
		c.Title,
		c.OrganizationName,
		c.Description,
		c.IncidentDate,
		c.IncidentEndDate,
		c.PurchaseAmount,
		c.Currency,
		c.DesiredOutcomes,
		c.Jurisdiction,
		c.PaymentMethod,
		c.OrganizationResponse,
		c.Analysis,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	return err
}

func scanCase(row interface{ Scan(dest ...any) error }) (*models.Case, error) {
	c := &models.Case{}
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Status,
		&c.Title,
		&c.OrganizationName,
		&c.Description,
		&c.IncidentDate,
		&c.IncidentEndDate,
		&c.PurchaseAmount,
		&c.Currency,
		&c.DesiredOutcomes,
		&c.Jurisdiction,
		&c.PaymentMethod,
		&c.OrganizationResponse,
		&c.Analysis,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a case by ID
func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`
	return scanCase(r.db.QueryRow(ctx, query, id))
}

// Update updates a case's facts and status
func (r *CaseRepository) Update(ctx context.Context, c *models.Case) error {
	query := `
		UPDATE cases SET
			status = $2,
			title = $3,
			organization_name = $4,
			description = $5,
			incident_date = $6,
			incident_end_date = $7,
			purchase_amount = $8,
			currency = $9,
			desired_outcomes = $10,
			jurisdiction = $11,
			payment_method = $12,
			organization_response = $13,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		c.ID,
		c.Status,
		c.Title,
		c.OrganizationName,
		c.Description,
		c.IncidentDate,
		c.IncidentEndDate,
		c.PurchaseAmount,
		c.Currency,
		c.DesiredOutcomes,
		c.Jurisdiction,
		c.PaymentMethod,
		c.OrganizationResponse,
	).Scan(&c.UpdatedAt)

	return err
}

// UpdateAnalysis replaces the stored analysis wholesale and sets the status
func (r *CaseRepository) UpdateAnalysis(ctx context.Context, id uuid.UUID, status models.CaseStatus, analysis *models.AnalysisResult) error {
	query := `
		UPDATE cases SET
			status = $2,
			analysis = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status, analysis)
	return err
}

// ListByUserID retrieves all cases for a user
func (r *CaseRepository) ListByUserID(ctx context.Context, userID uuid.UUID, status *models.CaseStatus, limit, offset int) ([]*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE user_id = $1`

	args := []interface{}{userID}
	argIndex := 2

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []*models.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}

	return cases, rows.Err()
}

// Delete deletes a case
func (r *CaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM cases WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
