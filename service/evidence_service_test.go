package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"disputedraft-backend/models"
	"disputedraft-backend/providers"

	"github.com/google/uuid"
)

func seedEvidence(t *testing.T, store *memEvidenceStore, files *memStorage, caseID uuid.UUID, filename string) *models.EvidenceItem {
	t.Helper()

	item := &models.EvidenceItem{ID: uuid.New(), CaseID: caseID, Filename: filename, MimeType: "application/pdf", Size: 3}
	path, err := files.Upload(context.Background(), item.ID, filename, bytes.NewReader([]byte("pdf")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	item.StoragePath = path
	if err := store.Create(context.Background(), item); err != nil {
		t.Fatalf("create: %v", err)
	}
	return item
}

func TestAnalyzeItemSuccess(t *testing.T) {
	store := newMemEvidenceStore()
	files := newMemStorage()
	caseID := uuid.New()
	item := seedEvidence(t, store, files, caseID, "receipt.pdf")

	vision := &stubEvidenceAnalyzer{analyzeFn: func(in []providers.EvidenceFile) ([]providers.EvidenceFinding, error) {
		if len(in) != 1 || in[0].Name != "receipt.pdf" {
			t.Errorf("provider received %+v, want the single item's file", in)
		}
		return []providers.EvidenceFinding{
			{FileName: "receipt.pdf", Type: "receipt", Description: "Payment of 250.00 GBP.", Strength: "strong"},
		}, nil
	}}

	svc := NewEvidenceService(
		EvidenceWithStore(store),
		EvidenceWithFileStorage(files),
		EvidenceWithAnalyzer(vision),
	)

	result, err := svc.AnalyzeItem(context.Background(), AnalyzeItemRequest{ItemID: item.ID})
	if err != nil {
		t.Fatalf("AnalyzeItem returned error: %v", err)
	}
	if result.Item.AnalysisState != models.EvidenceAnalyzed {
		t.Errorf("state = %q, want analyzed", result.Item.AnalysisState)
	}
	if result.Item.Findings == nil || result.Item.Findings.Type != "receipt" {
		t.Errorf("findings = %+v, want receipt finding", result.Item.Findings)
	}

	stored, _ := store.GetByID(context.Background(), item.ID)
	if stored.AnalysisState != models.EvidenceAnalyzed {
		t.Errorf("stored state = %q, want analyzed", stored.AnalysisState)
	}
}

func TestAnalyzeItemFailureRevertsState(t *testing.T) {
	store := newMemEvidenceStore()
	files := newMemStorage()
	caseID := uuid.New()
	item := seedEvidence(t, store, files, caseID, "blurry.jpg")

	vision := &stubEvidenceAnalyzer{analyzeFn: func([]providers.EvidenceFile) ([]providers.EvidenceFinding, error) {
		return nil, errors.New("unreadable image")
	}}

	svc := NewEvidenceService(
		EvidenceWithStore(store),
		EvidenceWithFileStorage(files),
		EvidenceWithAnalyzer(vision),
	)

	_, err := svc.AnalyzeItem(context.Background(), AnalyzeItemRequest{ItemID: item.ID})
	if !errors.Is(err, ErrEvidenceAnalysisFailed) {
		t.Fatalf("err = %v, want ErrEvidenceAnalysisFailed", err)
	}

	stored, _ := store.GetByID(context.Background(), item.ID)
	if stored.AnalysisState != models.EvidenceUnanalyzed {
		t.Errorf("stored state = %q, want reverted to unanalyzed", stored.AnalysisState)
	}
	if stored.Findings != nil {
		t.Errorf("stored findings = %+v, want none after failed analysis", stored.Findings)
	}
}

func TestAnalyzeItemUnknownID(t *testing.T) {
	svc := NewEvidenceService(
		EvidenceWithStore(newMemEvidenceStore()),
		EvidenceWithFileStorage(newMemStorage()),
		EvidenceWithAnalyzer(&stubEvidenceAnalyzer{analyzeFn: func([]providers.EvidenceFile) ([]providers.EvidenceFinding, error) {
			return nil, nil
		}}),
	)

	_, err := svc.AnalyzeItem(context.Background(), AnalyzeItemRequest{ItemID: uuid.New()})
	if !errors.Is(err, ErrEvidenceNotFound) {
		t.Fatalf("err = %v, want ErrEvidenceNotFound", err)
	}
}

func TestAnalyzeAllContinuesPastFailure(t *testing.T) {
	store := newMemEvidenceStore()
	files := newMemStorage()
	caseID := uuid.New()

	first := seedEvidence(t, store, files, caseID, "receipt.pdf")
	second := seedEvidence(t, store, files, caseID, "corrupt.pdf")
	third := seedEvidence(t, store, files, caseID, "email.txt")

	vision := &stubEvidenceAnalyzer{analyzeFn: func(in []providers.EvidenceFile) ([]providers.EvidenceFinding, error) {
		if in[0].Name == "corrupt.pdf" {
			return nil, errors.New("parse failure")
		}
		return []providers.EvidenceFinding{{FileName: in[0].Name, Type: "document", Description: "ok"}}, nil
	}}

	svc := NewEvidenceService(
		EvidenceWithStore(store),
		EvidenceWithFileStorage(files),
		EvidenceWithAnalyzer(vision),
	)

	result, err := svc.AnalyzeAll(context.Background(), AnalyzeAllRequest{CaseID: caseID})
	if err != nil {
		t.Fatalf("AnalyzeAll returned error: %v", err)
	}

	if result.Analyzed != 2 || result.Failed != 1 {
		t.Errorf("Analyzed = %d, Failed = %d, want 2 and 1", result.Analyzed, result.Failed)
	}
	if len(result.Outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(result.Outcomes))
	}

	// Batch order follows upload order.
	wantOrder := []string{"receipt.pdf", "corrupt.pdf", "email.txt"}
	for i, outcome := range result.Outcomes {
		if outcome.Filename != wantOrder[i] {
			t.Errorf("outcome[%d] = %q, want %q", i, outcome.Filename, wantOrder[i])
		}
	}
	if result.Outcomes[1].Error == "" {
		t.Error("second outcome has no error, want failure recorded")
	}
	if result.Outcomes[0].Error != "" || result.Outcomes[2].Error != "" {
		t.Error("successful outcomes carry errors")
	}

	for id, wantState := range map[uuid.UUID]models.EvidenceAnalysisState{
		first.ID:  models.EvidenceAnalyzed,
		second.ID: models.EvidenceUnanalyzed,
		third.ID:  models.EvidenceAnalyzed,
	} {
		stored, _ := store.GetByID(context.Background(), id)
		if stored.AnalysisState != wantState {
			t.Errorf("item %s state = %q, want %q", stored.Filename, stored.AnalysisState, wantState)
		}
	}
}

func TestAnalyzeAllSkipsAlreadyAnalyzed(t *testing.T) {
	store := newMemEvidenceStore()
	files := newMemStorage()
	caseID := uuid.New()

	done := seedEvidence(t, store, files, caseID, "done.pdf")
	store.UpdateAnalysis(context.Background(), done.ID, models.EvidenceAnalyzed, &models.EvidenceFindings{Type: "receipt"})
	seedEvidence(t, store, files, caseID, "new.pdf")

	var calls int
	vision := &stubEvidenceAnalyzer{analyzeFn: func(in []providers.EvidenceFile) ([]providers.EvidenceFinding, error) {
		calls++
		return []providers.EvidenceFinding{{FileName: in[0].Name, Type: "document", Description: "ok"}}, nil
	}}

	svc := NewEvidenceService(
		EvidenceWithStore(store),
		EvidenceWithFileStorage(files),
		EvidenceWithAnalyzer(vision),
	)

	result, err := svc.AnalyzeAll(context.Background(), AnalyzeAllRequest{CaseID: caseID})
	if err != nil {
		t.Fatalf("AnalyzeAll returned error: %v", err)
	}
	if calls != 1 {
		t.Errorf("provider called %d times, want 1", calls)
	}
	if result.Analyzed != 1 || len(result.Outcomes) != 1 {
		t.Errorf("result = %+v, want one outcome for the unanalyzed item only", result)
	}
}

func TestSetIncludedBeforeAnalysis(t *testing.T) {
	store := newMemEvidenceStore()
	files := newMemStorage()
	caseID := uuid.New()
	item := seedEvidence(t, store, files, caseID, "photo.jpg")

	svc := NewEvidenceService(
		EvidenceWithStore(store),
		EvidenceWithFileStorage(files),
	)

	if err := svc.SetIncluded(context.Background(), SetIncludedRequest{ItemID: item.ID, Included: true}); err != nil {
		t.Fatalf("SetIncluded returned error: %v", err)
	}

	stored, _ := store.GetByID(context.Background(), item.ID)
	if !stored.IncludedInLetter {
		t.Error("IncludedInLetter = false, want true")
	}
	if stored.AnalysisState != models.EvidenceUnanalyzed {
		t.Errorf("state = %q, inclusion must not change analysis state", stored.AnalysisState)
	}
}

func TestEditFindingsOverwritesDescription(t *testing.T) {
	store := newMemEvidenceStore()
	files := newMemStorage()
	caseID := uuid.New()
	item := seedEvidence(t, store, files, caseID, "receipt.pdf")
	store.UpdateAnalysis(context.Background(), item.ID, models.EvidenceAnalyzed, &models.EvidenceFindings{
		Type:        "receipt",
		Description: "Original description.",
		KeyDetails:  []string{"250.00 GBP"},
	})

	svc := NewEvidenceService(
		EvidenceWithStore(store),
		EvidenceWithFileStorage(files),
	)

	if err := svc.EditFindings(context.Background(), EditFindingsRequest{ItemID: item.ID, Summary: "Corrected description."}); err != nil {
		t.Fatalf("EditFindings returned error: %v", err)
	}

	stored, _ := store.GetByID(context.Background(), item.ID)
	if stored.Findings.Description != "Corrected description." {
		t.Errorf("Description = %q, want overwrite", stored.Findings.Description)
	}
	if len(stored.Findings.KeyDetails) != 1 {
		t.Error("edit clobbered unrelated findings fields")
	}
	if stored.AnalysisState != models.EvidenceAnalyzed {
		t.Errorf("state = %q, edit must not change analysis state", stored.AnalysisState)
	}
}

func TestDeleteRemovesRecordAndFile(t *testing.T) {
	store := newMemEvidenceStore()
	files := newMemStorage()
	caseID := uuid.New()
	item := seedEvidence(t, store, files, caseID, "old.pdf")

	svc := NewEvidenceService(
		EvidenceWithStore(store),
		EvidenceWithFileStorage(files),
	)

	if err := svc.Delete(context.Background(), DeleteRequest{ItemID: item.ID}); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := store.GetByID(context.Background(), item.ID); err == nil {
		t.Error("record still present after delete")
	}
	if _, ok := files.files[item.StoragePath]; ok {
		t.Error("stored bytes still present after delete")
	}
}
