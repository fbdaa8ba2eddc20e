package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"

	"disputedraft-backend/models"
	"disputedraft-backend/providers"

	"github.com/google/uuid"
)

// In-memory store fakes. Each fake honors the ordering contract of its real
// repository counterpart and exposes injectable errors per method.

type memCaseStore struct {
	cases map[uuid.UUID]*models.Case

	createErr         error
	getErr            error
	updateErr         error
	updateAnalysisErr error
}

func newMemCaseStore() *memCaseStore {
	return &memCaseStore{cases: make(map[uuid.UUID]*models.Case)}
}

func (m *memCaseStore) Create(_ context.Context, c *models.Case) error {
	if m.createErr != nil {
		return m.createErr
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	m.cases[c.ID] = &cp
	return nil
}

func (m *memCaseStore) GetByID(_ context.Context, id uuid.UUID) (*models.Case, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.cases[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	cp := *c
	return &cp, nil
}

func (m *memCaseStore) Update(_ context.Context, c *models.Case) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.cases[c.ID]; !ok {
		return errors.New("no rows")
	}
	cp := *c
	m.cases[c.ID] = &cp
	return nil
}

func (m *memCaseStore) UpdateAnalysis(_ context.Context, id uuid.UUID, status models.CaseStatus, analysis *models.AnalysisResult) error {
	if m.updateAnalysisErr != nil {
		return m.updateAnalysisErr
	}
	c, ok := m.cases[id]
	if !ok {
		return errors.New("no rows")
	}
	c.Status = status
	c.Analysis = analysis
	return nil
}

func (m *memCaseStore) ListByUserID(_ context.Context, userID uuid.UUID, status *models.CaseStatus, limit, offset int) ([]*models.Case, error) {
	var out []*models.Case
	for _, c := range m.cases {
		if c.UserID != userID {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (m *memCaseStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.cases, id)
	return nil
}

type memLetterStore struct {
	letters []*models.Letter

	createErr error
}

func (m *memLetterStore) Create(_ context.Context, letter *models.Letter) error {
	if m.createErr != nil {
		return m.createErr
	}
	if letter.ID == uuid.Nil {
		letter.ID = uuid.New()
	}
	cp := *letter
	m.letters = append(m.letters, &cp)
	return nil
}

func (m *memLetterStore) GetByID(_ context.Context, id uuid.UUID) (*models.Letter, error) {
	for _, l := range m.letters {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, errors.New("no rows")
}

// ListByCaseID returns most recent first, matching the repository ordering.
// Appends happen in insertion order, so reverse iteration suffices here.
func (m *memLetterStore) ListByCaseID(_ context.Context, caseID uuid.UUID) ([]*models.Letter, error) {
	var out []*models.Letter
	for i := len(m.letters) - 1; i >= 0; i-- {
		if m.letters[i].CaseID == caseID {
			cp := *m.letters[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memLetterStore) UpdateContent(_ context.Context, id uuid.UUID, subject, body string) error {
	for _, l := range m.letters {
		if l.ID == id {
			l.Subject = subject
			l.Body = body
			return nil
		}
	}
	return errors.New("no rows")
}

type memEvidenceStore struct {
	items map[uuid.UUID]*models.EvidenceItem
	order []uuid.UUID // upload order, matches repository ListByCaseID

	updateAnalysisErr error
}

func newMemEvidenceStore() *memEvidenceStore {
	return &memEvidenceStore{items: make(map[uuid.UUID]*models.EvidenceItem)}
}

func (m *memEvidenceStore) Create(_ context.Context, item *models.EvidenceItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.AnalysisState == "" {
		item.AnalysisState = models.EvidenceUnanalyzed
	}
	cp := *item
	m.items[item.ID] = &cp
	m.order = append(m.order, item.ID)
	return nil
}

func (m *memEvidenceStore) GetByID(_ context.Context, id uuid.UUID) (*models.EvidenceItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	cp := *item
	return &cp, nil
}

func (m *memEvidenceStore) ListByCaseID(_ context.Context, caseID uuid.UUID) ([]*models.EvidenceItem, error) {
	var out []*models.EvidenceItem
	for _, id := range m.order {
		item := m.items[id]
		if item != nil && item.CaseID == caseID {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memEvidenceStore) UpdateAnalysis(_ context.Context, id uuid.UUID, state models.EvidenceAnalysisState, findings *models.EvidenceFindings) error {
	if m.updateAnalysisErr != nil {
		return m.updateAnalysisErr
	}
	item, ok := m.items[id]
	if !ok {
		return errors.New("no rows")
	}
	item.AnalysisState = state
	item.Findings = findings
	return nil
}

func (m *memEvidenceStore) UpdateContext(_ context.Context, id uuid.UUID, text string) error {
	item, ok := m.items[id]
	if !ok {
		return errors.New("no rows")
	}
	item.Context = text
	return nil
}

func (m *memEvidenceStore) SetIncluded(_ context.Context, id uuid.UUID, included bool) error {
	item, ok := m.items[id]
	if !ok {
		return errors.New("no rows")
	}
	item.IncludedInLetter = included
	return nil
}

func (m *memEvidenceStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return errors.New("no rows")
	}
	delete(m.items, id)
	return nil
}

// memStorage keeps uploaded bytes keyed by storage path
type memStorage struct {
	files map[string][]byte

	downloadErr error
}

func newMemStorage() *memStorage {
	return &memStorage{files: make(map[string][]byte)}
}

func (m *memStorage) Upload(_ context.Context, itemID uuid.UUID, filename string, data io.Reader) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	path := itemID.String() + "/" + filename
	m.files[path] = b
	return path, nil
}

func (m *memStorage) Download(_ context.Context, storagePath string) (io.ReadCloser, error) {
	if m.downloadErr != nil {
		return nil, m.downloadErr
	}
	b, ok := m.files[storagePath]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memStorage) Delete(_ context.Context, storagePath string) error {
	delete(m.files, storagePath)
	return nil
}

// Provider stubs. Function fields keep each test's behavior local to the test.

type stubResearcher struct {
	citations []providers.ResearchCitation
	err       error
}

func (s *stubResearcher) Research(context.Context, providers.CaseFacts) ([]providers.ResearchCitation, error) {
	return s.citations, s.err
}

type stubAnalyzer struct {
	assessment *providers.CaseAssessment
	err        error
}

func (s *stubAnalyzer) Analyze(context.Context, providers.CaseFacts) (*providers.CaseAssessment, error) {
	return s.assessment, s.err
}

type stubEvidenceAnalyzer struct {
	analyzeFn func(files []providers.EvidenceFile) ([]providers.EvidenceFinding, error)
}

func (s *stubEvidenceAnalyzer) AnalyzeFiles(_ context.Context, files []providers.EvidenceFile) ([]providers.EvidenceFinding, error) {
	return s.analyzeFn(files)
}

type stubLetterWriter struct {
	output  string
	err     error
	lastReq *providers.LetterRequest
}

func (s *stubLetterWriter) WriteLetter(_ context.Context, req providers.LetterRequest) (string, error) {
	s.lastReq = &req
	return s.output, s.err
}
