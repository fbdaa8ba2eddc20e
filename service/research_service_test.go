package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"disputedraft-backend/models"
	"disputedraft-backend/providers"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func testFacts() providers.CaseFacts {
	return providers.CaseFacts{
		OrganizationName: "Acme Travel",
		Title:            "Cancelled flight not refunded",
		Description:      "The flight was cancelled and no refund was offered.",
		Currency:         "GBP",
		Jurisdiction:     "UK",
	}
}

func TestAggregateMergesCitationsFirstWins(t *testing.T) {
	analyzer := &stubAnalyzer{assessment: &providers.CaseAssessment{
		ConfidenceScore: 72,
		Issues:          []string{"Service not provided as agreed"},
		LegalBasis: []models.LegalCitation{
			{Law: "Consumer Rights Act 2015", Section: "s.49", Summary: "Services must be performed with reasonable care and skill."},
		},
	}}
	research := &stubResearcher{citations: []providers.ResearchCitation{
		// Same law, differently spaced and cased: must collapse onto the
		// analyzer's entry and only backfill its missing strength.
		{Name: "  consumer   rights ACT 2015 ", Section: "s.54", Summary: "Research summary that must not win.", Relevance: "high"},
		{Name: "Package Travel Regulations 2018", Summary: "Refunds for cancelled packages.", Relevance: "medium"},
		{Name: "Some Obscure Notice", Relevance: "low"},
	}}

	svc := NewResearchService(
		ResearchWithLegalResearcher(research),
		ResearchWithCaseAnalyzer(analyzer),
	)

	result, err := svc.Aggregate(context.Background(), testFacts(), nil)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	want := []models.LegalCitation{
		{Law: "Consumer Rights Act 2015", Section: "s.49", Summary: "Services must be performed with reasonable care and skill.", Strength: models.StrengthStrong},
		{Law: "Package Travel Regulations 2018", Summary: "Refunds for cancelled packages.", Strength: models.StrengthModerate},
		{Law: "Some Obscure Notice", Strength: models.StrengthSupportive},
	}
	if diff := cmp.Diff(want, result.LegalBasis); diff != "" {
		t.Errorf("merged citations mismatch (-want +got):\n%s", diff)
	}
	if result.ConfidenceScore != 72 {
		t.Errorf("ConfidenceScore = %d, want 72", result.ConfidenceScore)
	}
	if result.FallbackUsed {
		t.Error("FallbackUsed = true for a successful analysis pass")
	}
}

func TestMergeCitationsIdempotent(t *testing.T) {
	primary := []models.LegalCitation{
		{Law: "Consumer Rights Act 2015", Summary: "First."},
		{Law: "Equality Act 2010", Strength: models.StrengthStrong},
	}
	research := []providers.ResearchCitation{
		{Name: "Consumer Rights Act 2015", Relevance: "high"},
		{Name: "EQUALITY act 2010", Relevance: "low"},
	}

	once := mergeCitations(primary, research)
	twice := mergeCitations(once, research)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("merge not idempotent (-once +twice):\n%s", diff)
	}
}

func TestAggregateFallbackWhenAnalyzerFails(t *testing.T) {
	analyzer := &stubAnalyzer{err: errors.New("upstream 503")}
	research := &stubResearcher{citations: []providers.ResearchCitation{
		{Name: "Consumer Rights Act 2015", Relevance: "high"},
	}}

	svc := NewResearchService(
		ResearchWithLegalResearcher(research),
		ResearchWithCaseAnalyzer(analyzer),
	)

	first, err := svc.Aggregate(context.Background(), testFacts(), nil)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	second, err := svc.Aggregate(context.Background(), testFacts(), nil)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	if !first.FallbackUsed {
		t.Error("FallbackUsed = false, want true when case analysis fails")
	}
	if first.ConfidenceScore != fallbackConfidenceScore {
		t.Errorf("ConfidenceScore = %d, want %d", first.ConfidenceScore, fallbackConfidenceScore)
	}
	if len(first.Issues) == 0 {
		t.Error("fallback analysis has no issues")
	}
	if len(first.LegalBasis) == 0 {
		t.Error("fallback analysis has no legal basis")
	}

	// Deterministic apart from the timestamp: two runs over the same facts
	// must synthesize identical results.
	if diff := cmp.Diff(first, second, cmpopts.IgnoreFields(models.AnalysisResult{}, "AnalyzedAt")); diff != "" {
		t.Errorf("fallback not deterministic (-first +second):\n%s", diff)
	}
}

func TestAggregateResearchFailureKeepsAnalyzerResult(t *testing.T) {
	analyzer := &stubAnalyzer{assessment: &providers.CaseAssessment{
		ConfidenceScore: 60,
		Issues:          []string{"Goods not delivered"},
		LegalBasis: []models.LegalCitation{
			{Law: "Consumer Rights Act 2015", Strength: models.StrengthStrong},
		},
	}}
	research := &stubResearcher{err: errors.New("timeout")}

	svc := NewResearchService(
		ResearchWithLegalResearcher(research),
		ResearchWithCaseAnalyzer(analyzer),
	)

	result, err := svc.Aggregate(context.Background(), testFacts(), nil)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if result.FallbackUsed {
		t.Error("FallbackUsed = true; research failure must not trigger fallback")
	}
	if len(result.LegalBasis) != 1 || result.LegalBasis[0].Law != "Consumer Rights Act 2015" {
		t.Errorf("LegalBasis = %+v, want analyzer citation only", result.LegalBasis)
	}
}

func TestAggregateEvidenceSummary(t *testing.T) {
	analyzer := &stubAnalyzer{assessment: &providers.CaseAssessment{
		ConfidenceScore: 55,
		Issues:          []string{"Overcharged"},
	}}
	research := &stubResearcher{}
	files := []providers.EvidenceFile{{Name: "receipt.pdf", MimeType: "application/pdf", Data: []byte("pdf")}}

	t.Run("attached on success", func(t *testing.T) {
		vision := &stubEvidenceAnalyzer{analyzeFn: func([]providers.EvidenceFile) ([]providers.EvidenceFinding, error) {
			return []providers.EvidenceFinding{
				{FileName: "receipt.pdf", Type: "receipt", Description: "Shows a payment of 250.00 GBP.", SuggestedUse: "Proof of payment."},
			}, nil
		}}
		svc := NewResearchService(
			ResearchWithLegalResearcher(research),
			ResearchWithCaseAnalyzer(analyzer),
			ResearchWithEvidenceAnalyzer(vision),
		)

		result, err := svc.Aggregate(context.Background(), testFacts(), files)
		if err != nil {
			t.Fatalf("Aggregate returned error: %v", err)
		}
		if result.EvidenceSummary == nil {
			t.Fatal("EvidenceSummary = nil, want summary")
		}
		if !strings.Contains(*result.EvidenceSummary, "receipt.pdf") {
			t.Errorf("EvidenceSummary = %q, want filename mentioned", *result.EvidenceSummary)
		}
	})

	t.Run("omitted on failure", func(t *testing.T) {
		vision := &stubEvidenceAnalyzer{analyzeFn: func([]providers.EvidenceFile) ([]providers.EvidenceFinding, error) {
			return nil, errors.New("vision unavailable")
		}}
		svc := NewResearchService(
			ResearchWithLegalResearcher(research),
			ResearchWithCaseAnalyzer(analyzer),
			ResearchWithEvidenceAnalyzer(vision),
		)

		result, err := svc.Aggregate(context.Background(), testFacts(), files)
		if err != nil {
			t.Fatalf("Aggregate returned error: %v", err)
		}
		if result.EvidenceSummary != nil {
			t.Errorf("EvidenceSummary = %q, want nil when vision fails", *result.EvidenceSummary)
		}
		if result.FallbackUsed {
			t.Error("FallbackUsed = true; evidence failure must not trigger fallback")
		}
	})
}

func TestStrengthFromRelevance(t *testing.T) {
	cases := map[string]models.CitationStrength{
		"high":    models.StrengthStrong,
		" HIGH ":  models.StrengthStrong,
		"medium":  models.StrengthModerate,
		"low":     models.StrengthSupportive,
		"unknown": models.StrengthSupportive,
		"":        models.StrengthSupportive,
	}
	for relevance, want := range cases {
		if got := strengthFromRelevance(relevance); got != want {
			t.Errorf("strengthFromRelevance(%q) = %q, want %q", relevance, got, want)
		}
	}
}
