package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CaseStatus represents the lifecycle state of a dispute case
type CaseStatus string

const (
	CaseStatusDraft     CaseStatus = "draft"
	CaseStatusAnalyzing CaseStatus = "analyzing"
	CaseStatusAnalyzed  CaseStatus = "analyzed"
)

// PaymentMethod represents how the complainant paid the organization
type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentDebitCard    PaymentMethod = "debit_card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCash         PaymentMethod = "cash"
	PaymentOther        PaymentMethod = "other"
)

// IsCard reports whether the payment method supports a chargeback claim
func (p PaymentMethod) IsCard() bool {
	return p == PaymentCreditCard || p == PaymentDebitCard
}

// Desired outcome values a complainant may select. OutcomeSystemSuggested is an
// explicit variant, not free text: the letter engine substitutes a concrete
// remedy inferred from the case facts wherever it appears.
const (
	OutcomeRefund          = "refund"
	OutcomeReplacement     = "replacement"
	OutcomeRepair          = "repair"
	OutcomeCompensation    = "compensation"
	OutcomeApology         = "apology"
	OutcomeSystemSuggested = "system-suggested"
)

// Case represents a dispute case entity
type Case struct {
	ID     uuid.UUID  `json:"id"`
	UserID uuid.UUID  `json:"user_id"`
	Status CaseStatus `json:"status"`

	// Complainant-entered facts
	Title                string           `json:"title"`
	OrganizationName     string           `json:"organization_name"`
	Description          string           `json:"description"`
	IncidentDate         *time.Time       `json:"incident_date,omitempty"`
	IncidentEndDate      *time.Time       `json:"incident_end_date,omitempty"`
	PurchaseAmount       *decimal.Decimal `json:"purchase_amount,omitempty"`
	Currency             string           `json:"currency"`
	DesiredOutcomes      []string         `json:"desired_outcomes"`
	Jurisdiction         string           `json:"jurisdiction"`
	PaymentMethod        PaymentMethod    `json:"payment_method"`
	OrganizationResponse *string          `json:"organization_response,omitempty"`

	// Set by the research pipeline; replaced wholesale on each analysis pass
	Analysis *AnalysisResult `json:"analysis,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
