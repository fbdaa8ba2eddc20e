package service

import (
	"context"

	"disputedraft-backend/models"

	"github.com/google/uuid"
)

// CaseStore is the persistence contract for cases. Satisfied by
// repository.CaseRepository; tests substitute in-memory fakes.
type CaseStore interface {
	Create(ctx context.Context, c *models.Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error)
	Update(ctx context.Context, c *models.Case) error
	UpdateAnalysis(ctx context.Context, id uuid.UUID, status models.CaseStatus, analysis *models.AnalysisResult) error
	ListByUserID(ctx context.Context, userID uuid.UUID, status *models.CaseStatus, limit, offset int) ([]*models.Case, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LetterStore is the persistence contract for letters. Create appends;
// UpdateContent is the only in-place mutation.
type LetterStore interface {
	Create(ctx context.Context, letter *models.Letter) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Letter, error)
	ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.Letter, error)
	UpdateContent(ctx context.Context, id uuid.UUID, subject, body string) error
}

// EvidenceStore is the persistence contract for evidence items
type EvidenceStore interface {
	Create(ctx context.Context, item *models.EvidenceItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EvidenceItem, error)
	ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.EvidenceItem, error)
	UpdateAnalysis(ctx context.Context, id uuid.UUID, state models.EvidenceAnalysisState, findings *models.EvidenceFindings) error
	UpdateContext(ctx context.Context, id uuid.UUID, text string) error
	SetIncluded(ctx context.Context, id uuid.UUID, included bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}
