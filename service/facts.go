package service

import (
	"disputedraft-backend/models"
	"disputedraft-backend/providers"
)

// caseFacts maps a stored case onto the normalized provider input. This is the
// single place where entities cross into provider territory.
func caseFacts(c *models.Case) providers.CaseFacts {
	return providers.CaseFacts{
		OrganizationName:     c.OrganizationName,
		Title:                c.Title,
		Description:          c.Description,
		IncidentDate:         c.IncidentDate,
		IncidentEndDate:      c.IncidentEndDate,
		PurchaseAmount:       c.PurchaseAmount,
		Currency:             c.Currency,
		DesiredOutcomes:      c.DesiredOutcomes,
		Jurisdiction:         c.Jurisdiction,
		PaymentMethod:        string(c.PaymentMethod),
		OrganizationResponse: c.OrganizationResponse,
	}
}
