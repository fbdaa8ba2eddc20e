package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"disputedraft-backend/models"
	"disputedraft-backend/providers"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCreateCaseDefaults(t *testing.T) {
	store := newMemCaseStore()
	svc := NewCaseService(CaseWithStore(store))

	userID := uuid.New()
	result, err := svc.CreateCase(context.Background(), CreateCaseRequest{
		UserID: userID,
		Case:   &models.Case{OrganizationName: "Acme Travel"},
	})
	if err != nil {
		t.Fatalf("CreateCase returned error: %v", err)
	}

	if result.Case.Status != models.CaseStatusDraft {
		t.Errorf("Status = %q, want draft", result.Case.Status)
	}
	if result.Case.UserID != userID {
		t.Errorf("UserID = %s, want %s", result.Case.UserID, userID)
	}
	if result.Case.DesiredOutcomes == nil {
		t.Error("DesiredOutcomes = nil, want empty slice")
	}
}

func TestUpdateCaseKeepsLifecycleState(t *testing.T) {
	store := newMemCaseStore()
	svc := NewCaseService(CaseWithStore(store))

	c := &models.Case{ID: uuid.New(), UserID: uuid.New(), Status: models.CaseStatusAnalyzed, OrganizationName: "Acme Travel"}
	if err := store.Create(context.Background(), c); err != nil {
		t.Fatalf("create: %v", err)
	}

	c.Description = "Updated description of the dispute."
	if _, err := svc.UpdateCase(context.Background(), UpdateCaseRequest{Case: c}); err != nil {
		t.Fatalf("UpdateCase returned error: %v", err)
	}

	stored, _ := store.GetByID(context.Background(), c.ID)
	if stored.Status != models.CaseStatusAnalyzed {
		t.Errorf("Status = %q after fact edit, want analyzed preserved", stored.Status)
	}
	if stored.Description != c.Description {
		t.Errorf("Description = %q, want the edit persisted", stored.Description)
	}
}

func TestListCasesFiltersByStatus(t *testing.T) {
	store := newMemCaseStore()
	svc := NewCaseService(CaseWithStore(store))
	userID := uuid.New()

	for _, status := range []models.CaseStatus{models.CaseStatusDraft, models.CaseStatusAnalyzed} {
		c := &models.Case{ID: uuid.New(), UserID: userID, Status: status, OrganizationName: "Acme Travel"}
		if err := store.Create(context.Background(), c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	draft := models.CaseStatusDraft
	result, err := svc.ListCases(context.Background(), ListCasesRequest{UserID: userID, Status: &draft})
	if err != nil {
		t.Fatalf("ListCases returned error: %v", err)
	}
	if len(result.Cases) != 1 || result.Cases[0].Status != models.CaseStatusDraft {
		t.Errorf("filtered list = %+v, want the draft case only", result.Cases)
	}
}

func TestAdvanceToAnalyzingPropagatesStoreFailure(t *testing.T) {
	store := newMemCaseStore()
	storeErr := errors.New("connection reset")
	store.updateErr = storeErr

	research := NewResearchService(
		ResearchWithLegalResearcher(&stubResearcher{}),
		ResearchWithCaseAnalyzer(&stubAnalyzer{assessment: &providers.CaseAssessment{ConfidenceScore: 50, Issues: []string{"x"}}}),
	)
	svc := NewCaseService(CaseWithStore(store), CaseWithResearchService(research))

	c := &models.Case{ID: uuid.New(), UserID: uuid.New(), Status: models.CaseStatusDraft, OrganizationName: "Acme Travel"}
	store.updateErr = nil
	if err := store.Create(context.Background(), c); err != nil {
		t.Fatalf("create: %v", err)
	}
	store.updateErr = storeErr

	_, err := svc.AdvanceToAnalyzing(context.Background(), AdvanceToAnalyzingRequest{Case: c})
	if !errors.Is(err, storeErr) {
		t.Fatalf("err = %v, want the store failure verbatim", err)
	}
}

// Full pass with every provider down: the case still reaches analyzed with a
// synthesized analysis, and the initial letter still renders with the concrete
// purchase amount.
func TestAnalysisAndLetterSurviveTotalProviderFailure(t *testing.T) {
	caseStore := newMemCaseStore()
	letterStore := &memLetterStore{}
	evidenceStore := newMemEvidenceStore()
	files := newMemStorage()

	research := NewResearchService(
		ResearchWithLegalResearcher(&stubResearcher{err: errors.New("down")}),
		ResearchWithCaseAnalyzer(&stubAnalyzer{err: errors.New("down")}),
		ResearchWithEvidenceAnalyzer(&stubEvidenceAnalyzer{analyzeFn: func([]providers.EvidenceFile) ([]providers.EvidenceFinding, error) {
			return nil, errors.New("down")
		}}),
	)

	caseSvc := NewCaseService(
		CaseWithStore(caseStore),
		CaseWithEvidenceStore(evidenceStore),
		CaseWithFileStorage(files),
		CaseWithResearchService(research),
	)
	letterSvc := NewLetterService(
		LetterWithCaseStore(caseStore),
		LetterWithStore(letterStore),
		LetterWithEvidenceStore(evidenceStore),
		LetterWithWriter(&stubLetterWriter{err: errors.New("down")}),
	)

	amount := decimal.RequireFromString("250.00")
	created, err := caseSvc.CreateCase(context.Background(), CreateCaseRequest{
		UserID: uuid.New(),
		Case: &models.Case{
			Title:            "Holiday not provided",
			OrganizationName: "Acme Travel",
			Description:      "The tour operator failed to provide the holiday I had paid for and has ignored my complaint.",
			PurchaseAmount:   &amount,
			Currency:         "GBP",
			DesiredOutcomes:  []string{models.OutcomeSystemSuggested},
			Jurisdiction:     "UK",
			PaymentMethod:    models.PaymentBankTransfer,
		},
	})
	if err != nil {
		t.Fatalf("CreateCase returned error: %v", err)
	}

	analyzed, err := caseSvc.AdvanceToAnalyzing(context.Background(), AdvanceToAnalyzingRequest{Case: created.Case})
	if err != nil {
		t.Fatalf("AdvanceToAnalyzing returned error: %v; provider failures must not surface", err)
	}

	if analyzed.Case.Status != models.CaseStatusAnalyzed {
		t.Errorf("Status = %q, want analyzed", analyzed.Case.Status)
	}
	analysis := analyzed.Case.Analysis
	if analysis == nil {
		t.Fatal("Analysis = nil, want synthesized fallback")
	}
	if !analysis.FallbackUsed {
		t.Error("FallbackUsed = false, want true")
	}
	if analysis.ConfidenceScore != fallbackConfidenceScore {
		t.Errorf("ConfidenceScore = %d, want %d", analysis.ConfidenceScore, fallbackConfidenceScore)
	}
	if len(analysis.Issues) == 0 || len(analysis.LegalBasis) == 0 {
		t.Error("fallback analysis is missing issues or legal basis")
	}

	stored, _ := caseStore.GetByID(context.Background(), analyzed.Case.ID)
	if stored.Status != models.CaseStatusAnalyzed || stored.Analysis == nil {
		t.Error("analyzed state and analysis not persisted")
	}

	letter, err := letterSvc.GenerateLetter(context.Background(), GenerateLetterRequest{
		CaseID:     analyzed.Case.ID,
		LetterType: models.LetterInitial,
	})
	if err != nil {
		t.Fatalf("GenerateLetter returned error: %v; writer failure must not surface", err)
	}

	if !letter.Letter.FallbackUsed {
		t.Error("letter FallbackUsed = false, want true")
	}
	if strings.TrimSpace(letter.Letter.Body) == "" {
		t.Fatal("letter body is empty")
	}
	// The sentinel outcome resolves to a concrete remedy with the real amount.
	if !strings.Contains(letter.Letter.Body, "a full refund of 250.00 GBP") {
		t.Errorf("letter body missing the concrete refund phrase:\n%s", letter.Letter.Body)
	}
	if !strings.Contains(letter.Letter.Body, "250.00") {
		t.Errorf("letter body missing the purchase amount:\n%s", letter.Letter.Body)
	}
	if strings.Contains(letter.Letter.Body, models.OutcomeSystemSuggested) {
		t.Error("sentinel outcome value leaked into the letter body")
	}
}
