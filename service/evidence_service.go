package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"disputedraft-backend/models"
	"disputedraft-backend/providers"
	"disputedraft-backend/storage"

	"github.com/google/uuid"
)

// EvidenceService drives per-item and batch analysis of uploaded evidence and
// owns the analyzed / included-in-letter state per item.
type EvidenceService struct {
	evidenceRepo   EvidenceStore
	files          storage.Storage
	vision         providers.EvidenceAnalyzer
	analysisTimeout time.Duration
}

// EvidenceServiceOption is a functional option for EvidenceService
type EvidenceServiceOption func(*EvidenceService)

// EvidenceWithStore sets the evidence store
func EvidenceWithStore(repo EvidenceStore) EvidenceServiceOption {
	return func(s *EvidenceService) {
		s.evidenceRepo = repo
	}
}

// EvidenceWithFileStorage sets the file storage backend
func EvidenceWithFileStorage(files storage.Storage) EvidenceServiceOption {
	return func(s *EvidenceService) {
		s.files = files
	}
}

// EvidenceWithAnalyzer sets the vision provider
func EvidenceWithAnalyzer(p providers.EvidenceAnalyzer) EvidenceServiceOption {
	return func(s *EvidenceService) {
		s.vision = p
	}
}

// EvidenceWithAnalysisTimeout sets the per-item provider timeout
func EvidenceWithAnalysisTimeout(d time.Duration) EvidenceServiceOption {
	return func(s *EvidenceService) {
		s.analysisTimeout = d
	}
}

const defaultAnalysisTimeout = 60 * time.Second

// NewEvidenceService creates a new evidence service
func NewEvidenceService(opts ...EvidenceServiceOption) *EvidenceService {
	s := &EvidenceService{
		analysisTimeout: defaultAnalysisTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	ErrEvidenceNotFound       = errors.New("evidence item not found")
	ErrEvidenceAnalysisFailed = errors.New("evidence analysis failed")
)

// AnalyzeItemRequest identifies the item to analyze
type AnalyzeItemRequest struct {
	ItemID uuid.UUID
}

// AnalyzeItemResult carries the item with findings attached
type AnalyzeItemResult struct {
	Item *models.EvidenceItem
}

// AnalyzeItem runs the vision provider over one item. The item moves to
// analyzing for the duration of the call; on failure it reverts to unanalyzed
// and no partial findings are stored. The included-in-letter flag is never
// touched here.
func (s *EvidenceService) AnalyzeItem(ctx context.Context, req AnalyzeItemRequest) (*AnalyzeItemResult, error) {
	if s.evidenceRepo == nil {
		return nil, errors.New("evidence store not set")
	}
	if s.vision == nil {
		return nil, errors.New("evidence analyzer not set")
	}
	if s.files == nil {
		return nil, errors.New("file storage not set")
	}

	item, err := s.evidenceRepo.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, ErrEvidenceNotFound
	}

	if err := s.evidenceRepo.UpdateAnalysis(ctx, item.ID, models.EvidenceAnalyzing, item.Findings); err != nil {
		return nil, err
	}

	findings, err := s.analyzeFile(ctx, item)
	if err != nil {
		if revertErr := s.evidenceRepo.UpdateAnalysis(ctx, item.ID, models.EvidenceUnanalyzed, item.Findings); revertErr != nil {
			log.Printf("Warning: failed to revert analysis state for %s: %v", item.ID, revertErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrEvidenceAnalysisFailed, err)
	}

	if err := s.evidenceRepo.UpdateAnalysis(ctx, item.ID, models.EvidenceAnalyzed, findings); err != nil {
		return nil, err
	}

	item.AnalysisState = models.EvidenceAnalyzed
	item.Findings = findings

	return &AnalyzeItemResult{Item: item}, nil
}

// analyzeFile fetches the item's bytes and runs the vision provider
func (s *EvidenceService) analyzeFile(ctx context.Context, item *models.EvidenceItem) (*models.EvidenceFindings, error) {
	reader, err := s.files.Download(ctx, item.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, s.analysisTimeout)
	defer cancel()

	findings, err := s.vision.AnalyzeFiles(pctx, []providers.EvidenceFile{{
		Name:     item.Filename,
		MimeType: item.MimeType,
		Data:     data,
	}})
	if err != nil {
		return nil, err
	}
	if len(findings) == 0 {
		return nil, errors.New("provider returned no findings")
	}

	return findingsFromProvider(findings[0]), nil
}

// findingsFromProvider maps the provider wire shape onto the stored one
func findingsFromProvider(f providers.EvidenceFinding) *models.EvidenceFindings {
	return &models.EvidenceFindings{
		Type:          f.Type,
		Description:   f.Description,
		KeyDetails:    f.KeyDetails,
		ExtractedText: f.ExtractedText,
		SuggestedUse:  f.SuggestedUse,
		Strength:      models.CitationStrength(f.Strength),
	}
}

// AnalyzeAllRequest identifies the case whose items should be analyzed
type AnalyzeAllRequest struct {
	CaseID uuid.UUID
}

// ItemOutcome reports the result of analyzing one item in a batch
type ItemOutcome struct {
	ItemID   uuid.UUID `json:"item_id"`
	Filename string    `json:"filename"`
	Error    string    `json:"error,omitempty"`
}

// AnalyzeAllResult aggregates the per-item outcomes of a batch run
type AnalyzeAllResult struct {
	Outcomes []ItemOutcome `json:"outcomes"`
	Analyzed int           `json:"analyzed"`
	Failed   int           `json:"failed"`
}

// AnalyzeAll analyzes every unanalyzed item for a case, one at a time.
// Sequential on purpose: progress stays reportable item by item, a slow item
// cannot masquerade as a batch failure, and the vision provider sees at most
// one in-flight request per case. Individual failures are recorded and the
// batch continues.
func (s *EvidenceService) AnalyzeAll(ctx context.Context, req AnalyzeAllRequest) (*AnalyzeAllResult, error) {
	if s.evidenceRepo == nil {
		return nil, errors.New("evidence store not set")
	}

	items, err := s.evidenceRepo.ListByCaseID(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}

	result := &AnalyzeAllResult{}
	for _, item := range items {
		if item.AnalysisState != models.EvidenceUnanalyzed {
			continue
		}

		outcome := ItemOutcome{ItemID: item.ID, Filename: item.Filename}
		if _, err := s.AnalyzeItem(ctx, AnalyzeItemRequest{ItemID: item.ID}); err != nil {
			log.Printf("Warning: analysis of %s failed: %v. Continuing with remaining items.", item.Filename, err)
			outcome.Error = err.Error()
			result.Failed++
		} else {
			result.Analyzed++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	return result, nil
}

// SetIncludedRequest flags an item for letter inclusion
type SetIncludedRequest struct {
	ItemID   uuid.UUID
	Included bool
}

// SetIncluded flips the included-in-letter flag. The item does not need to be
// analyzed yet; the letter engine applies the analyzed-state filter at
// generation time.
func (s *EvidenceService) SetIncluded(ctx context.Context, req SetIncludedRequest) error {
	if s.evidenceRepo == nil {
		return errors.New("evidence store not set")
	}
	return s.evidenceRepo.SetIncluded(ctx, req.ItemID, req.Included)
}

// EditFindingsRequest overwrites the findings description for an item
type EditFindingsRequest struct {
	ItemID  uuid.UUID
	Summary string
}

// EditFindings overwrites the item's findings description. No merge.
func (s *EvidenceService) EditFindings(ctx context.Context, req EditFindingsRequest) error {
	if s.evidenceRepo == nil {
		return errors.New("evidence store not set")
	}

	item, err := s.evidenceRepo.GetByID(ctx, req.ItemID)
	if err != nil {
		return ErrEvidenceNotFound
	}

	findings := item.Findings
	if findings == nil {
		findings = &models.EvidenceFindings{}
	}
	findings.Description = req.Summary

	return s.evidenceRepo.UpdateAnalysis(ctx, item.ID, item.AnalysisState, findings)
}

// EditContextRequest overwrites the complainant-supplied context for an item
type EditContextRequest struct {
	ItemID uuid.UUID
	Text   string
}

// EditContext overwrites the item's complainant context. No merge.
func (s *EvidenceService) EditContext(ctx context.Context, req EditContextRequest) error {
	if s.evidenceRepo == nil {
		return errors.New("evidence store not set")
	}
	return s.evidenceRepo.UpdateContext(ctx, req.ItemID, req.Text)
}

// DeleteRequest removes an item and its stored file
type DeleteRequest struct {
	ItemID uuid.UUID
}

// Delete removes the item record and best-effort deletes the stored bytes
func (s *EvidenceService) Delete(ctx context.Context, req DeleteRequest) error {
	if s.evidenceRepo == nil {
		return errors.New("evidence store not set")
	}

	item, err := s.evidenceRepo.GetByID(ctx, req.ItemID)
	if err != nil {
		return ErrEvidenceNotFound
	}

	if err := s.evidenceRepo.Delete(ctx, item.ID); err != nil {
		return err
	}

	if s.files != nil {
		if err := s.files.Delete(ctx, item.StoragePath); err != nil {
			log.Printf("Warning: failed to delete stored file %s: %v", item.StoragePath, err)
		}
	}

	return nil
}
