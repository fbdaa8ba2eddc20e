package providers

import (
	"context"
	"time"

	"disputedraft-backend/models"

	"github.com/shopspring/decimal"
)

// CaseFacts is the normalized snapshot of complainant-entered facts handed to
// every provider. Providers never see stored entities directly; the mapping
// from Case to CaseFacts happens once at the service boundary so each provider
// adapter only deals in one shape.
type CaseFacts struct {
	OrganizationName     string
	Title                string
	Description          string
	IncidentDate         *time.Time
	IncidentEndDate      *time.Time
	PurchaseAmount       *decimal.Decimal
	Currency             string
	DesiredOutcomes      []string
	Jurisdiction         string
	PaymentMethod        string
	OrganizationResponse *string
}

// ResearchCitation is the raw shape the legal research provider returns.
// Relevance is the provider's own vocabulary; it is mapped onto citation
// strength during the merge, not here.
type ResearchCitation struct {
	Name      string `json:"name"`
	Section   string `json:"section,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Relevance string `json:"relevance,omitempty"` // "high", "medium", "low"
}

// LegalResearcher looks up statutes and regulations relevant to the case
type LegalResearcher interface {
	Research(ctx context.Context, facts CaseFacts) ([]ResearchCitation, error)
}

// CaseAssessment is the load-bearing analysis of the case: it supplies the
// confidence score and issue list that nothing else can.
type CaseAssessment struct {
	ConfidenceScore       int
	Issues                []string
	LegalBasis            []models.LegalCitation
	CompanyIntelligence   *string
	RecommendedAction     *string
	EstimatedCompensation *models.EstimatedCompensation
}

// CaseAnalyzer evaluates the merits of the case
type CaseAnalyzer interface {
	Analyze(ctx context.Context, facts CaseFacts) (*CaseAssessment, error)
}

// EvidenceFile is one uploaded item's bytes as handed to the vision provider
type EvidenceFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// EvidenceFinding is what the vision provider extracted from one file
type EvidenceFinding struct {
	FileName      string   `json:"file_name"`
	Type          string   `json:"type"`
	Description   string   `json:"description"`
	KeyDetails    []string `json:"key_details,omitempty"`
	ExtractedText *string  `json:"extracted_text,omitempty"`
	SuggestedUse  string   `json:"suggested_use,omitempty"`
	Strength      string   `json:"strength,omitempty"`
}

// EvidenceAnalyzer inspects uploaded evidence files
type EvidenceAnalyzer interface {
	AnalyzeFiles(ctx context.Context, files []EvidenceFile) ([]EvidenceFinding, error)
}

// LetterEvidence is one analyzed, included evidence item as presented to the
// letter provider.
type LetterEvidence struct {
	Filename     string
	Type         string
	Description  string
	SuggestedUse string
	Context      string
}

// PriorLetter summarizes one previously generated letter for context
type PriorLetter struct {
	LetterType string
	Subject    string
	SentAt     time.Time
}

// LetterContext carries the type-specific inputs a letter may need
type LetterContext struct {
	PreviousLetterDate string // follow-up
	OrganizationOffer  string // response-counter
	OmbudsmanName      string // escalation
	CardIssuer         string // chargeback
	Feedback           string // regeneration steering hint
}

// LetterRequest bundles everything the letter provider needs for one letter
type LetterRequest struct {
	Facts      CaseFacts
	Analysis   models.AnalysisResult
	LetterType string
	Evidence   []LetterEvidence
	History    []PriorLetter
	Context    LetterContext
	Tone       string
}

// LetterWriter produces the raw text of one letter
type LetterWriter interface {
	WriteLetter(ctx context.Context, req LetterRequest) (string, error)
}
