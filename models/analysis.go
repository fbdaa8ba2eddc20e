package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CitationStrength classifies how strongly a legal citation supports the case
type CitationStrength string

const (
	StrengthStrong     CitationStrength = "strong"
	StrengthModerate   CitationStrength = "moderate"
	StrengthSupportive CitationStrength = "supportive"
)

// LegalCitation is one legal reference supporting the complainant's position
type LegalCitation struct {
	Law      string           `json:"law"`
	Section  string           `json:"section,omitempty"`
	Summary  string           `json:"summary,omitempty"`
	Strength CitationStrength `json:"strength,omitempty"`
}

// NormalizeLawName returns the dedup identity of a law name: lowercased with
// whitespace runs collapsed to single spaces.
func NormalizeLawName(law string) string {
	return strings.Join(strings.Fields(strings.ToLower(law)), " ")
}

// EstimatedCompensation is a provider's estimate of what the case is worth
type EstimatedCompensation struct {
	Min   decimal.Decimal `json:"min"`
	Max   decimal.Decimal `json:"max"`
	Basis string          `json:"basis,omitempty"`
}

// AnalysisResult is the merged output of one research pass over a case.
// It is immutable once produced; a re-analysis replaces it wholesale.
type AnalysisResult struct {
	ConfidenceScore       int                    `json:"confidence_score"`
	Issues                []string               `json:"issues"`
	LegalBasis            []LegalCitation        `json:"legal_basis"`
	CompanyIntelligence   *string                `json:"company_intelligence,omitempty"`
	RecommendedAction     *string                `json:"recommended_action,omitempty"`
	EstimatedCompensation *EstimatedCompensation `json:"estimated_compensation,omitempty"`
	EvidenceSummary       *string                `json:"evidence_summary,omitempty"`

	// FallbackUsed flags that the result was synthesized locally because the
	// case analysis provider failed. Observability only, never a hard error.
	FallbackUsed bool      `json:"fallback_used,omitempty"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
}

// Value implements driver.Valuer for JSONB
func (a AnalysisResult) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB
func (a *AnalysisResult) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, a)
}
