package models

import (
	"time"

	"github.com/google/uuid"
)

// LetterType identifies where a letter sits in the escalation sequence
type LetterType string

const (
	LetterInitial         LetterType = "initial"
	LetterFollowUp        LetterType = "follow-up"
	LetterResponseCounter LetterType = "response-counter"
	LetterEscalation      LetterType = "escalation"
	LetterBeforeAction    LetterType = "letter-before-action"
	LetterChargeback      LetterType = "chargeback"
)

// EscalationOrder lists all letter types from least to most escalated.
// Eligibility is gated per type; the order itself is presentational.
var EscalationOrder = []LetterType{
	LetterInitial,
	LetterFollowUp,
	LetterResponseCounter,
	LetterEscalation,
	LetterBeforeAction,
	LetterChargeback,
}

// LetterTone is fixed for all generated correspondence
const LetterTone = "assertive"

// Letter represents one generated piece of correspondence. History is
// append-only per case: generation always creates a new record, edits
// mutate an existing one in place.
type Letter struct {
	ID         uuid.UUID  `json:"id"`
	CaseID     uuid.UUID  `json:"case_id"`
	LetterType LetterType `json:"letter_type"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body"`
	Tone       string     `json:"tone"`

	// FallbackUsed flags that the body came from the local template because
	// the letter provider failed.
	FallbackUsed bool `json:"fallback_used,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
