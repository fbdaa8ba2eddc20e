package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EvidenceAnalysisState tracks per-item analysis progress
type EvidenceAnalysisState string

const (
	EvidenceUnanalyzed EvidenceAnalysisState = "unanalyzed"
	EvidenceAnalyzing  EvidenceAnalysisState = "analyzing"
	EvidenceAnalyzed   EvidenceAnalysisState = "analyzed"
)

// EvidenceFindings holds what the vision provider extracted from one item
type EvidenceFindings struct {
	Type          string           `json:"type"`
	Description   string           `json:"description"`
	KeyDetails    []string         `json:"key_details,omitempty"`
	ExtractedText *string          `json:"extracted_text,omitempty"`
	SuggestedUse  string           `json:"suggested_use,omitempty"`
	Strength      CitationStrength `json:"strength,omitempty"`
}

// Value implements driver.Valuer for JSONB
func (f EvidenceFindings) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements sql.Scanner for JSONB
func (f *EvidenceFindings) Scan(value interface{}) error {
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

	return json.Unmarshal(bytes, f)
}

// EvidenceItem represents one uploaded piece of evidence
type EvidenceItem struct {
	ID          uuid.UUID `json:"id"`
	CaseID      uuid.UUID `json:"case_id"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path"`

	AnalysisState    EvidenceAnalysisState `json:"analysis_state"`
	Findings         *EvidenceFindings     `json:"findings,omitempty"`
	IncludedInLetter bool                  `json:"included_in_letter"`
	Context          string                `json:"context"` // complainant-supplied free text

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
