package service

import (
	"context"
	"errors"
	"io"
	"log"

	"disputedraft-backend/models"
	"disputedraft-backend/providers"
	"disputedraft-backend/storage"

	"github.com/google/uuid"
)

// CaseService owns the case lifecycle (draft, analyzing, analyzed) and case
// CRUD for the host.
type CaseService struct {
	caseRepo     CaseStore
	evidenceRepo EvidenceStore
	files        storage.Storage
	research     *ResearchService
}

// CaseServiceOption is a functional option for CaseService
type CaseServiceOption func(*CaseService)

// CaseWithStore sets the case store
func CaseWithStore(repo CaseStore) CaseServiceOption {
	return func(s *CaseService) {
		s.caseRepo = repo
	}
}

// CaseWithEvidenceStore sets the evidence store
func CaseWithEvidenceStore(repo EvidenceStore) CaseServiceOption {
	return func(s *CaseService) {
		s.evidenceRepo = repo
	}
}

// CaseWithFileStorage sets the file storage backend
func CaseWithFileStorage(files storage.Storage) CaseServiceOption {
	return func(s *CaseService) {
		s.files = files
	}
}

// CaseWithResearchService sets the research aggregator
func CaseWithResearchService(research *ResearchService) CaseServiceOption {
	return func(s *CaseService) {
		s.research = research
	}
}

// NewCaseService creates a new case service
func NewCaseService(opts ...CaseServiceOption) *CaseService {
	s := &CaseService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var ErrCaseNotFound = errors.New("case not found")

// CreateCaseRequest represents a request to create a case
type CreateCaseRequest struct {
	UserID uuid.UUID
	Case   *models.Case
}

// CreateCaseResult represents the result of creating a case
type CreateCaseResult struct {
	Case *models.Case
}

// CreateCase persists a new case in draft state
func (s *CaseService) CreateCase(ctx context.Context, req CreateCaseRequest) (*CreateCaseResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case store not set")
	}

	c := req.Case
	if c == nil {
		c = &models.Case{}
	}
	c.UserID = req.UserID
	if c.Status == "" {
		c.Status = models.CaseStatusDraft
	}
	if c.DesiredOutcomes == nil {
		c.DesiredOutcomes = []string{}
	}

	if err := s.caseRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	return &CreateCaseResult{Case: c}, nil
}

// GetCaseRequest represents a request to get a case
type GetCaseRequest struct {
	ID uuid.UUID
}

// GetCaseResult represents the result of getting a case
type GetCaseResult struct {
	Case *models.Case
}

// GetCase retrieves a case by ID
func (s *CaseService) GetCase(ctx context.Context, req GetCaseRequest) (*GetCaseResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case store not set")
	}

	c, err := s.caseRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	return &GetCaseResult{Case: c}, nil
}

// UpdateCaseRequest represents a request to update case facts
type UpdateCaseRequest struct {
	Case *models.Case
}

// UpdateCaseResult represents the result of updating a case
type UpdateCaseResult struct {
	Case *models.Case
}

// UpdateCase persists edited case facts. Editing facts never reverts
// lifecycle state; a fresh analysis must be requested explicitly.
func (s *CaseService) UpdateCase(ctx context.Context, req UpdateCaseRequest) (*UpdateCaseResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case store not set")
	}

	if err := s.caseRepo.Update(ctx, req.Case); err != nil {
		return nil, err
	}

	return &UpdateCaseResult{Case: req.Case}, nil
}

// ListCasesRequest represents a request to list cases
type ListCasesRequest struct {
	UserID uuid.UUID
	Status *models.CaseStatus
	Limit  int
	Offset int
}

// ListCasesResult represents the result of listing cases
type ListCasesResult struct {
	Cases []*models.Case
}

// ListCases lists cases for a user
func (s *CaseService) ListCases(ctx context.Context, req ListCasesRequest) (*ListCasesResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case store not set")
	}

	cases, err := s.caseRepo.ListByUserID(ctx, req.UserID, req.Status, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}

	return &ListCasesResult{Cases: cases}, nil
}

// DeleteCaseRequest represents a request to delete a case
type DeleteCaseRequest struct {
	ID uuid.UUID
}

// DeleteCase removes a case record
func (s *CaseService) DeleteCase(ctx context.Context, req DeleteCaseRequest) error {
	if s.caseRepo == nil {
		return errors.New("case store not set")
	}
	return s.caseRepo.Delete(ctx, req.ID)
}

// AdvanceToAnalyzingRequest carries the case, with any unsaved fact edits, to
// run through research.
type AdvanceToAnalyzingRequest struct {
	Case *models.Case
}

// AdvanceToAnalyzingResult carries the analyzed case
type AdvanceToAnalyzingResult struct {
	Case *models.Case
}

// AdvanceToAnalyzing moves the case from draft to analyzing, runs the research
// aggregation, persists the merged result, and moves the case to analyzed.
// Research always yields a result (degraded at worst), so the only errors here
// are persistence failures, which propagate verbatim.
func (s *CaseService) AdvanceToAnalyzing(ctx context.Context, req AdvanceToAnalyzingRequest) (*AdvanceToAnalyzingResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case store not set")
	}
	if s.research == nil {
		return nil, errors.New("research service not set")
	}

	c := req.Case
	c.Status = models.CaseStatusAnalyzing
	if err := s.caseRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	files := s.collectEvidenceFiles(ctx, c.ID)

	analysis, err := s.research.Aggregate(ctx, caseFacts(c), files)
	if err != nil {
		return nil, err
	}

	c.Analysis = analysis
	c.Status = models.CaseStatusAnalyzed
	if err := s.caseRepo.UpdateAnalysis(ctx, c.ID, c.Status, analysis); err != nil {
		return nil, err
	}

	return &AdvanceToAnalyzingResult{Case: c}, nil
}

// collectEvidenceFiles loads the bytes of every evidence item for the vision
// provider. Best effort: an unreadable item is skipped with a warning, never
// failing the analysis pass.
func (s *CaseService) collectEvidenceFiles(ctx context.Context, caseID uuid.UUID) []providers.EvidenceFile {
	if s.evidenceRepo == nil || s.files == nil {
		return nil
	}

	items, err := s.evidenceRepo.ListByCaseID(ctx, caseID)
	if err != nil {
		log.Printf("Warning: failed to list evidence for %s: %v", caseID, err)
		return nil
	}

	var files []providers.EvidenceFile
	for _, item := range items {
		reader, err := s.files.Download(ctx, item.StoragePath)
		if err != nil {
			log.Printf("Warning: failed to fetch evidence file %s: %v", item.Filename, err)
			continue
		}
		data, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			log.Printf("Warning: failed to read evidence file %s: %v", item.Filename, err)
			continue
		}
		files = append(files, providers.EvidenceFile{
			Name:     item.Filename,
			MimeType: item.MimeType,
			Data:     data,
		})
	}

	return files
}
