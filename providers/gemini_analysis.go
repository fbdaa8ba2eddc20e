package providers

import (
	"context"
	"fmt"
	"strings"

	"disputedraft-backend/models"

	"github.com/shopspring/decimal"
)

// GeminiCaseAnalyzer implements CaseAnalyzer against the Gemini API
type GeminiCaseAnalyzer struct {
	client *GeminiClient
}

// NewGeminiCaseAnalyzer creates a case analysis adapter
func NewGeminiCaseAnalyzer(client *GeminiClient) *GeminiCaseAnalyzer {
	return &GeminiCaseAnalyzer{client: client}
}

// assessmentPayload is the provider wire shape; it is mapped onto the
// normalized CaseAssessment before leaving this adapter.
type assessmentPayload struct {
	ConfidenceScore     int    `json:"confidence_score"`
	Issues              []string `json:"issues"`
	LegalBasis          []struct {
		Law      string `json:"law"`
		Section  string `json:"section,omitempty"`
		Summary  string `json:"summary,omitempty"`
		Strength string `json:"strength,omitempty"`
	} `json:"legal_basis"`
	CompanyIntelligence string `json:"company_intelligence,omitempty"`
	RecommendedAction   string `json:"recommended_action,omitempty"`
	Compensation        *struct {
		Min   string `json:"min"`
		Max   string `json:"max"`
		Basis string `json:"basis,omitempty"`
	} `json:"estimated_compensation,omitempty"`
}

// Analyze evaluates the merits of the case
func (a *GeminiCaseAnalyzer) Analyze(ctx context.Context, facts CaseFacts) (*CaseAssessment, error) {
	prompt := fmt.Sprintf(`You are a consumer dispute analyst assessing a complaint before formal correspondence is drafted.

CASE FACTS:
%s

TASK:
Assess the strength of this complaint.

OUTPUT REQUIREMENTS:
- Respond with a JSON object only, no prose
- Shape:
{
  "confidence_score": 0-100,
  "issues": [string],
  "legal_basis": [{"law": string, "section": string, "summary": string, "strength": "strong"|"moderate"|"supportive"}],
  "company_intelligence": string,
  "recommended_action": string,
  "estimated_compensation": {"min": "0.00", "max": "0.00", "basis": string}
}
- "issues" lists the distinct failings of the organization, each one sentence
- "confidence_score" reflects how likely a well-argued complaint is to succeed
- Monetary values are decimal strings in the case currency
- Omit optional fields you cannot support from the facts
- Never invent a statute`,
		formatFacts(facts))

	raw, err := a.client.generate(ctx, prompt, 0.2)
	if err != nil {
		return nil, err
	}

	var payload assessmentPayload
	if err := decodeJSONResponse(raw, &payload); err != nil {
		return nil, err
	}

	assessment := &CaseAssessment{
		ConfidenceScore: clampScore(payload.ConfidenceScore),
		Issues:          payload.Issues,
	}

	for _, c := range payload.LegalBasis {
		if strings.TrimSpace(c.Law) == "" {
			continue
		}
		assessment.LegalBasis = append(assessment.LegalBasis, models.LegalCitation{
			Law:      c.Law,
			Section:  c.Section,
			Summary:  c.Summary,
			Strength: citationStrength(c.Strength),
		})
	}

	if s := strings.TrimSpace(payload.CompanyIntelligence); s != "" {
		assessment.CompanyIntelligence = &s
	}
	if s := strings.TrimSpace(payload.RecommendedAction); s != "" {
		assessment.RecommendedAction = &s
	}
	if payload.Compensation != nil {
		min, minErr := decimal.NewFromString(payload.Compensation.Min)
		max, maxErr := decimal.NewFromString(payload.Compensation.Max)
		if minErr == nil && maxErr == nil {
			assessment.EstimatedCompensation = &models.EstimatedCompensation{
				Min:   min,
				Max:   max,
				Basis: payload.Compensation.Basis,
			}
		}
	}

	if len(assessment.Issues) == 0 {
		return nil, fmt.Errorf("provider returned no issues")
	}

	return assessment, nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func citationStrength(s string) models.CitationStrength {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strong":
		return models.StrengthStrong
	case "moderate":
		return models.StrengthModerate
	case "supportive":
		return models.StrengthSupportive
	}
	return ""
}
