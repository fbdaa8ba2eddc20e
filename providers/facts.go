package providers

import (
	"fmt"
	"strings"
)

// formatFacts renders CaseFacts as a prompt block shared by all adapters
func formatFacts(facts CaseFacts) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Organization: %s\n", facts.OrganizationName))
	if facts.Title != "" {
		b.WriteString(fmt.Sprintf("Complaint title: %s\n", facts.Title))
	}
	if facts.Description != "" {
		b.WriteString(fmt.Sprintf("What happened: %s\n", facts.Description))
	}
	if facts.IncidentDate != nil {
		if facts.IncidentEndDate != nil {
			b.WriteString(fmt.Sprintf("Incident period: %s to %s\n",
				facts.IncidentDate.Format("2 January 2006"),
				facts.IncidentEndDate.Format("2 January 2006")))
		} else {
			b.WriteString(fmt.Sprintf("Incident date: %s\n", facts.IncidentDate.Format("2 January 2006")))
		}
	}
	if facts.PurchaseAmount != nil {
		b.WriteString(fmt.Sprintf("Amount paid: %s %s\n", facts.PurchaseAmount.StringFixed(2), facts.Currency))
	}
	if facts.PaymentMethod != "" {
		b.WriteString(fmt.Sprintf("Payment method: %s\n", facts.PaymentMethod))
	}
	if facts.Jurisdiction != "" {
		b.WriteString(fmt.Sprintf("Jurisdiction: %s\n", facts.Jurisdiction))
	}
	if len(facts.DesiredOutcomes) > 0 {
		b.WriteString(fmt.Sprintf("Desired outcome(s): %s\n", strings.Join(facts.DesiredOutcomes, ", ")))
	}
	if facts.OrganizationResponse != nil && strings.TrimSpace(*facts.OrganizationResponse) != "" {
		b.WriteString(fmt.Sprintf("Organization's response so far: %s\n", *facts.OrganizationResponse))
	}

	return b.String()
}
