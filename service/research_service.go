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

	"golang.org/x/sync/errgroup"
)

// ResearchService fans out to the independent research providers and merges
// their results into one AnalysisResult. It is total: provider failures
// degrade the result, they never surface as errors.
type ResearchService struct {
	legal           providers.LegalResearcher
	analyzer        providers.CaseAnalyzer
	evidence        providers.EvidenceAnalyzer
	providerTimeout time.Duration
}

// ResearchServiceOption is a functional option for ResearchService
type ResearchServiceOption func(*ResearchService)

// ResearchWithLegalResearcher sets the legal research provider
func ResearchWithLegalResearcher(p providers.LegalResearcher) ResearchServiceOption {
	return func(s *ResearchService) {
		s.legal = p
	}
}

// ResearchWithCaseAnalyzer sets the case analysis provider
func ResearchWithCaseAnalyzer(p providers.CaseAnalyzer) ResearchServiceOption {
	return func(s *ResearchService) {
		s.analyzer = p
	}
}

// ResearchWithEvidenceAnalyzer sets the evidence vision provider
func ResearchWithEvidenceAnalyzer(p providers.EvidenceAnalyzer) ResearchServiceOption {
	return func(s *ResearchService) {
		s.evidence = p
	}
}

// ResearchWithProviderTimeout sets the per-provider timeout
func ResearchWithProviderTimeout(d time.Duration) ResearchServiceOption {
	return func(s *ResearchService) {
		s.providerTimeout = d
	}
}

const defaultProviderTimeout = 90 * time.Second

// NewResearchService creates a new research service
func NewResearchService(opts ...ResearchServiceOption) *ResearchService {
	s := &ResearchService{
		providerTimeout: defaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fallbackConfidenceScore is deliberately below the midpoint so a synthesized
// analysis never reads stronger than a real one.
const fallbackConfidenceScore = 40

// Aggregate runs the research providers concurrently and merges their output.
// The returned error covers wiring mistakes only; provider failures are
// absorbed into the fallback path.
func (s *ResearchService) Aggregate(ctx context.Context, facts providers.CaseFacts, files []providers.EvidenceFile) (*models.AnalysisResult, error) {
	if s.analyzer == nil {
		return nil, errors.New("case analyzer not set")
	}
	if s.legal == nil {
		return nil, errors.New("legal researcher not set")
	}

	var (
		citations  []providers.ResearchCitation
		citErr     error
		assessment *providers.CaseAssessment
		assessErr  error
		findings   []providers.EvidenceFinding
		findErr    error
	)

	// Fan out with one independent timeout per provider. Each closure
	// records its own result and returns nil so no provider's failure can
	// cancel a sibling.
	g := new(errgroup.Group)

	g.Go(func() error {
		cctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
		defer cancel()
		citations, citErr = s.legal.Research(cctx, facts)
		return nil
	})

	g.Go(func() error {
		cctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
		defer cancel()
		assessment, assessErr = s.analyzer.Analyze(cctx, facts)
		return nil
	})

	withEvidence := len(files) > 0 && s.evidence != nil
	if withEvidence {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
			defer cancel()
			findings, findErr = s.evidence.AnalyzeFiles(cctx, files)
			return nil
		})
	}

	_ = g.Wait()

	var result *models.AnalysisResult
	if assessErr != nil || assessment == nil {
		// Case analysis is the load-bearing provider; without it the whole
		// pass falls back to local synthesis.
		log.Printf("Warning: case analysis failed, synthesizing fallback analysis: %v", assessErr)
		result = fallbackAnalysis()
	} else {
		if citErr != nil {
			log.Printf("Warning: legal research failed, keeping analyzer citations only: %v", citErr)
		}
		result = &models.AnalysisResult{
			ConfidenceScore:       assessment.ConfidenceScore,
			Issues:                assessment.Issues,
			LegalBasis:            mergeCitations(assessment.LegalBasis, citations),
			CompanyIntelligence:   assessment.CompanyIntelligence,
			RecommendedAction:     assessment.RecommendedAction,
			EstimatedCompensation: assessment.EstimatedCompensation,
			AnalyzedAt:            time.Now().UTC(),
		}
	}

	if withEvidence {
		if findErr != nil {
			log.Printf("Warning: evidence analysis failed, omitting evidence summary: %v", findErr)
		} else if len(findings) > 0 {
			summary := summarizeFindings(findings)
			result.EvidenceSummary = &summary
		}
	}

	return result, nil
}

// fallbackAnalysis is the deterministic local substitute used when the case
// analysis provider fails. Fixed shape: non-empty issues, one
// jurisdiction-neutral citation, conservative confidence.
func fallbackAnalysis() *models.AnalysisResult {
	return &models.AnalysisResult{
		ConfidenceScore: fallbackConfidenceScore,
		Issues: []string{
			"The organization appears not to have provided the goods or services with reasonable care and skill.",
			"The organization has not resolved the matter despite having had the opportunity to do so.",
			"The complainant may be entitled to a remedy under applicable consumer protection law.",
		},
		LegalBasis: []models.LegalCitation{
			{
				Law:      "General consumer protection law",
				Summary:  "Consumers are entitled to goods and services that match their description, are of satisfactory quality, and are supplied with reasonable care and skill; where they are not, the consumer is entitled to a remedy.",
				Strength: models.StrengthModerate,
			},
		},
		FallbackUsed: true,
		AnalyzedAt:   time.Now().UTC(),
	}
}

// mergeCitations combines the analyzer's citations with legal research
// output. Tie-break on normalized law name: the first-seen entry wins its
// summary and strength, except that a later entry supplies strength where the
// first had none. Analyzer citations are added first, so they take precedence
// over research hits for the same law.
func mergeCitations(primary []models.LegalCitation, research []providers.ResearchCitation) []models.LegalCitation {
	merged := make([]models.LegalCitation, 0, len(primary)+len(research))
	index := make(map[string]int)

	add := func(c models.LegalCitation) {
		key := models.NormalizeLawName(c.Law)
		if key == "" {
			return
		}
		if i, ok := index[key]; ok {
			if merged[i].Strength == "" && c.Strength != "" {
				merged[i].Strength = c.Strength
			}
			return
		}
		index[key] = len(merged)
		merged = append(merged, c)
	}

	for _, c := range primary {
		add(c)
	}
	for _, rc := range research {
		add(models.LegalCitation{
			Law:      rc.Name,
			Section:  rc.Section,
			Summary:  rc.Summary,
			Strength: strengthFromRelevance(rc.Relevance),
		})
	}

	return merged
}

// strengthFromRelevance maps the research provider's relevance vocabulary
// onto citation strength.
func strengthFromRelevance(relevance string) models.CitationStrength {
	switch strings.ToLower(strings.TrimSpace(relevance)) {
	case "high":
		return models.StrengthStrong
	case "medium":
		return models.StrengthModerate
	case "low":
		return models.StrengthSupportive
	}
	return models.StrengthSupportive
}

// summarizeFindings renders vision findings as the analysis evidence summary
func summarizeFindings(findings []providers.EvidenceFinding) string {
	var b strings.Builder
	for i, f := range findings {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("%s (%s): %s", f.FileName, f.Type, f.Description))
		if f.SuggestedUse != "" {
			b.WriteString(" Suggested use: " + f.SuggestedUse)
		}
	}
	return b.String()
}
