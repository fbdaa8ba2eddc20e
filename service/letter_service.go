package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"disputedraft-backend/models"
	"disputedraft-backend/providers"

	"github.com/google/uuid"
)

// LetterService is the letter-type state machine: it decides which letter
// types are currently eligible, assembles generation requests, synthesizes a
// fallback letter when the provider fails, and manages letter history.
type LetterService struct {
	caseRepo      CaseStore
	letterRepo    LetterStore
	evidenceRepo  EvidenceStore
	writer        providers.LetterWriter
	writerTimeout time.Duration
}

// LetterServiceOption is a functional option for LetterService
type LetterServiceOption func(*LetterService)

// LetterWithCaseStore sets the case store
func LetterWithCaseStore(repo CaseStore) LetterServiceOption {
	return func(s *LetterService) {
		s.caseRepo = repo
	}
}

// LetterWithStore sets the letter store
func LetterWithStore(repo LetterStore) LetterServiceOption {
	return func(s *LetterService) {
		s.letterRepo = repo
	}
}

// LetterWithEvidenceStore sets the evidence store
func LetterWithEvidenceStore(repo EvidenceStore) LetterServiceOption {
	return func(s *LetterService) {
		s.evidenceRepo = repo
	}
}

// LetterWithWriter sets the letter generation provider
func LetterWithWriter(w providers.LetterWriter) LetterServiceOption {
	return func(s *LetterService) {
		s.writer = w
	}
}

// LetterWithWriterTimeout sets the provider timeout
func LetterWithWriterTimeout(d time.Duration) LetterServiceOption {
	return func(s *LetterService) {
		s.writerTimeout = d
	}
}

const defaultWriterTimeout = 120 * time.Second

// NewLetterService creates a new letter service
func NewLetterService(opts ...LetterServiceOption) *LetterService {
	s := &LetterService{
		writerTimeout: defaultWriterTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Caller errors: precondition violations reported distinctly from provider
// failures, which are absorbed by fallback synthesis and never surface here.
var (
	ErrCaseNotAnalyzed       = errors.New("case has not been analyzed")
	ErrLetterTypeNotEligible = errors.New("letter type prerequisites not met")
	ErrUnknownLetterType     = errors.New("unknown letter type")
	ErrLetterNotFound        = errors.New("letter not found")
)

// letterTypeEligible evaluates the prerequisite for one letter type against
// the case and its letter history.
func letterTypeEligible(c *models.Case, history []*models.Letter, t models.LetterType) bool {
	switch t {
	case models.LetterInitial:
		return true
	case models.LetterFollowUp, models.LetterEscalation, models.LetterBeforeAction:
		return len(history) > 0
	case models.LetterResponseCounter:
		return c.OrganizationResponse != nil && strings.TrimSpace(*c.OrganizationResponse) != ""
	case models.LetterChargeback:
		return c.PaymentMethod.IsCard()
	}
	return false
}

// EligibleLetterTypesRequest identifies the case to evaluate
type EligibleLetterTypesRequest struct {
	CaseID uuid.UUID
}

// EligibleLetterTypesResult lists the currently eligible letter types in
// escalation order.
type EligibleLetterTypesResult struct {
	Types []models.LetterType
}

// EligibleLetterTypes returns the letter types whose prerequisites currently
// hold, so a host UI can gray out the rest without duplicating the rules.
func (s *LetterService) EligibleLetterTypes(ctx context.Context, req EligibleLetterTypesRequest) (*EligibleLetterTypesResult, error) {
	if s.caseRepo == nil || s.letterRepo == nil {
		return nil, errors.New("letter service stores not set")
	}

	c, err := s.caseRepo.GetByID(ctx, req.CaseID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	history, err := s.letterRepo.ListByCaseID(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}

	var types []models.LetterType
	for _, t := range models.EscalationOrder {
		if letterTypeEligible(c, history, t) {
			types = append(types, t)
		}
	}

	return &EligibleLetterTypesResult{Types: types}, nil
}

// GenerateLetterRequest represents a request to generate a letter
type GenerateLetterRequest struct {
	CaseID     uuid.UUID
	LetterType models.LetterType
	Context    providers.LetterContext
}

// GenerateLetterResult carries the appended letter
type GenerateLetterResult struct {
	Letter *models.Letter
}

// GenerateLetter produces a new letter for the case. Precondition violations
// (case not analyzed, ineligible type) come back as caller errors; provider
// failure is absorbed by the local template, so a satisfied precondition
// always yields a letter. A new record is always appended.
func (s *LetterService) GenerateLetter(ctx context.Context, req GenerateLetterRequest) (*GenerateLetterResult, error) {
	if s.caseRepo == nil || s.letterRepo == nil {
		return nil, errors.New("letter service stores not set")
	}

	if !knownLetterType(req.LetterType) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLetterType, req.LetterType)
	}

	c, err := s.caseRepo.GetByID(ctx, req.CaseID)
	if err != nil {
		return nil, ErrCaseNotFound
	}
	if c.Status != models.CaseStatusAnalyzed || c.Analysis == nil {
		return nil, ErrCaseNotAnalyzed
	}

	history, err := s.letterRepo.ListByCaseID(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}
	if !letterTypeEligible(c, history, req.LetterType) {
		return nil, fmt.Errorf("%w: %s", ErrLetterTypeNotEligible, req.LetterType)
	}

	evidence, err := s.collectIncludedEvidence(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	subject, body, fallbackUsed := s.composeLetter(ctx, c, req.LetterType, req.Context, evidence, history)

	letter := &models.Letter{
		CaseID:       c.ID,
		LetterType:   req.LetterType,
		Subject:      subject,
		Body:         body,
		Tone:         models.LetterTone,
		FallbackUsed: fallbackUsed,
	}
	if err := s.letterRepo.Create(ctx, letter); err != nil {
		return nil, err
	}

	return &GenerateLetterResult{Letter: letter}, nil
}

// RegenerateLetterRequest is GenerateLetter plus a steering hint
type RegenerateLetterRequest struct {
	CaseID     uuid.UUID
	LetterType models.LetterType
	Feedback   string
	Context    providers.LetterContext
}

// RegenerateLetter generates a fresh letter with the complainant's feedback
// folded in. Always appends; the prior letter is untouched.
func (s *LetterService) RegenerateLetter(ctx context.Context, req RegenerateLetterRequest) (*GenerateLetterResult, error) {
	lctx := req.Context
	lctx.Feedback = req.Feedback
	return s.GenerateLetter(ctx, GenerateLetterRequest{
		CaseID:     req.CaseID,
		LetterType: req.LetterType,
		Context:    lctx,
	})
}

// composeLetter invokes the provider and falls back to the local template on
// any failure. Total: always returns a subject and body.
func (s *LetterService) composeLetter(ctx context.Context, c *models.Case, t models.LetterType, lctx providers.LetterContext, evidence []providers.LetterEvidence, history []*models.Letter) (subject, body string, fallbackUsed bool) {
	if s.writer != nil {
		wctx, cancel := context.WithTimeout(ctx, s.writerTimeout)
		defer cancel()

		raw, err := s.writer.WriteLetter(wctx, providers.LetterRequest{
			Facts:      caseFacts(c),
			Analysis:   *c.Analysis,
			LetterType: string(t),
			Evidence:   evidence,
			History:    priorLetters(history),
			Context:    lctx,
			Tone:       models.LetterTone,
		})
		if err == nil && strings.TrimSpace(raw) != "" {
			subject, body = splitSubjectBody(raw)
			if subject == "" {
				subject = defaultSubject(c)
			}
			return subject, body, false
		}
		log.Printf("Warning: letter provider failed for %s letter, using template: %v", t, err)
	}

	subject = defaultSubject(c)
	body = s.templateLetter(c, t, lctx)
	return subject, body, true
}

// collectIncludedEvidence returns only items that are both analyzed and
// flagged for inclusion. An unanalyzed item never reaches the provider even
// when flagged.
func (s *LetterService) collectIncludedEvidence(ctx context.Context, caseID uuid.UUID) ([]providers.LetterEvidence, error) {
	if s.evidenceRepo == nil {
		return nil, nil
	}

	items, err := s.evidenceRepo.ListByCaseID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	var evidence []providers.LetterEvidence
	for _, item := range items {
		if item.AnalysisState != models.EvidenceAnalyzed || !item.IncludedInLetter {
			continue
		}
		e := providers.LetterEvidence{
			Filename: item.Filename,
			Context:  item.Context,
		}
		if item.Findings != nil {
			e.Type = item.Findings.Type
			e.Description = item.Findings.Description
			e.SuggestedUse = item.Findings.SuggestedUse
		}
		evidence = append(evidence, e)
	}

	return evidence, nil
}

func priorLetters(history []*models.Letter) []providers.PriorLetter {
	prior := make([]providers.PriorLetter, 0, len(history))
	for _, l := range history {
		prior = append(prior, providers.PriorLetter{
			LetterType: string(l.LetterType),
			Subject:    l.Subject,
			SentAt:     l.CreatedAt,
		})
	}
	return prior
}

func knownLetterType(t models.LetterType) bool {
	for _, known := range models.EscalationOrder {
		if t == known {
			return true
		}
	}
	return false
}

// splitSubjectBody extracts a leading subject marker from provider output.
// Returns an empty subject when no marker is present; the caller synthesizes
// the default.
func splitSubjectBody(raw string) (string, string) {
	trimmed := strings.TrimSpace(raw)
	lines := strings.SplitN(trimmed, "\n", 2)
	first := strings.TrimSpace(lines[0])

	for _, prefix := range []string{"Subject:", "SUBJECT:", "Re:", "RE:"} {
		if strings.HasPrefix(first, prefix) {
			subject := strings.TrimSpace(strings.TrimPrefix(first, prefix))
			body := ""
			if len(lines) > 1 {
				body = strings.TrimSpace(lines[1])
			}
			return subject, body
		}
	}

	return "", trimmed
}

// defaultSubject is the deterministic subject used when the provider output
// carries no marker and for every template letter.
func defaultSubject(c *models.Case) string {
	if c.Title != "" {
		return fmt.Sprintf("Formal complaint against %s: %s", c.OrganizationName, c.Title)
	}
	return "Formal complaint against " + c.OrganizationName
}

// UpdateLetterRequest edits the subject and/or body of one letter in place
type UpdateLetterRequest struct {
	LetterID uuid.UUID
	Subject  *string
	Body     *string
}

// UpdateLetterResult carries the edited letter
type UpdateLetterResult struct {
	Letter *models.Letter
}

// UpdateLetter mutates an existing letter in place. Count of letters never
// changes here; new versions come from GenerateLetter/RegenerateLetter only.
func (s *LetterService) UpdateLetter(ctx context.Context, req UpdateLetterRequest) (*UpdateLetterResult, error) {
	if s.letterRepo == nil {
		return nil, errors.New("letter store not set")
	}

	letter, err := s.letterRepo.GetByID(ctx, req.LetterID)
	if err != nil {
		return nil, ErrLetterNotFound
	}

	if req.Subject != nil {
		letter.Subject = *req.Subject
	}
	if req.Body != nil {
		letter.Body = *req.Body
	}

	if err := s.letterRepo.UpdateContent(ctx, letter.ID, letter.Subject, letter.Body); err != nil {
		return nil, err
	}

	return &UpdateLetterResult{Letter: letter}, nil
}

// GetLetterRequest identifies one letter
type GetLetterRequest struct {
	LetterID uuid.UUID
}

// GetLetterResult carries the letter
type GetLetterResult struct {
	Letter *models.Letter
}

// GetLetter retrieves one letter by ID
func (s *LetterService) GetLetter(ctx context.Context, req GetLetterRequest) (*GetLetterResult, error) {
	if s.letterRepo == nil {
		return nil, errors.New("letter store not set")
	}

	letter, err := s.letterRepo.GetByID(ctx, req.LetterID)
	if err != nil {
		return nil, ErrLetterNotFound
	}

	return &GetLetterResult{Letter: letter}, nil
}

// ListLettersRequest identifies the case whose letters to list
type ListLettersRequest struct {
	CaseID uuid.UUID
}

// ListLettersResult lists letters most recent first; the first entry is the
// current letter.
type ListLettersResult struct {
	Letters []*models.Letter
}

// ListLetters returns the full letter history for a case
func (s *LetterService) ListLetters(ctx context.Context, req ListLettersRequest) (*ListLettersResult, error) {
	if s.letterRepo == nil {
		return nil, errors.New("letter store not set")
	}

	letters, err := s.letterRepo.ListByCaseID(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}

	return &ListLettersResult{Letters: letters}, nil
}
