package service

import (
	"fmt"
	"strings"

	"disputedraft-backend/models"
	"disputedraft-backend/providers"
)

// templateLetter synthesizes a complete letter body locally when the provider
// fails. Deterministic: same case and type always produce the same text.
func (s *LetterService) templateLetter(c *models.Case, t models.LetterType, lctx providers.LetterContext) string {
	var b strings.Builder

	switch t {
	case models.LetterChargeback:
		b.WriteString("Dear Sir or Madam,\n\n")
		if lctx.CardIssuer != "" {
			b.WriteString(fmt.Sprintf("I am writing to %s to request a chargeback for a disputed payment made to %s.\n\n", lctx.CardIssuer, c.OrganizationName))
		} else {
			b.WriteString(fmt.Sprintf("I am writing to request a chargeback for a disputed payment made to %s.\n\n", c.OrganizationName))
		}
	case models.LetterEscalation:
		b.WriteString("Dear Sir or Madam,\n\n")
		if lctx.OmbudsmanName != "" {
			b.WriteString(fmt.Sprintf("I am referring my unresolved complaint against %s to %s.\n\n", c.OrganizationName, lctx.OmbudsmanName))
		} else {
			b.WriteString(fmt.Sprintf("I am escalating my unresolved complaint against %s for independent review.\n\n", c.OrganizationName))
		}
	default:
		b.WriteString("Dear Sir or Madam,\n\n")
		b.WriteString(openingParagraph(c, t, lctx))
		b.WriteString("\n\n")
	}

	// Facts
	b.WriteString(factsParagraph(c))
	b.WriteString("\n\n")

	// Legal basis
	if c.Analysis != nil && len(c.Analysis.LegalBasis) > 0 {
		b.WriteString(citationProse(c.Analysis.LegalBasis))
		b.WriteString("\n\n")
	}

	// Remedy sought
	b.WriteString(outcomeParagraph(c))
	b.WriteString("\n\n")

	// Type-specific closing
	b.WriteString(closingParagraph(c, t, lctx))
	b.WriteString("\n\nYours faithfully,\n")

	return b.String()
}

func openingParagraph(c *models.Case, t models.LetterType, lctx providers.LetterContext) string {
	switch t {
	case models.LetterInitial:
		return fmt.Sprintf("I am writing to make a formal complaint against %s.", c.OrganizationName)
	case models.LetterFollowUp:
		if lctx.PreviousLetterDate != "" {
			return fmt.Sprintf("I wrote to you on %s regarding my complaint and have received no response. I am now following up on that letter.", lctx.PreviousLetterDate)
		}
		return "I am following up on my earlier complaint, to which I have received no response."
	case models.LetterResponseCounter:
		if lctx.OrganizationOffer != "" {
			return fmt.Sprintf("Thank you for your response to my complaint. Your offer of %s does not resolve the matter, for the reasons set out below.", lctx.OrganizationOffer)
		}
		return "Thank you for your response to my complaint. It does not resolve the matter, for the reasons set out below."
	case models.LetterBeforeAction:
		return fmt.Sprintf("This is a formal letter before action regarding my unresolved complaint against %s. Please treat it accordingly.", c.OrganizationName)
	}
	return fmt.Sprintf("I am writing regarding my complaint against %s.", c.OrganizationName)
}

func factsParagraph(c *models.Case) string {
	var b strings.Builder

	if c.IncidentDate != nil {
		if c.IncidentEndDate != nil {
			b.WriteString(fmt.Sprintf("Between %s and %s, ",
				c.IncidentDate.Format("2 January 2006"),
				c.IncidentEndDate.Format("2 January 2006")))
		} else {
			b.WriteString(fmt.Sprintf("On %s, ", c.IncidentDate.Format("2 January 2006")))
		}
	}

	if c.PurchaseAmount != nil {
		b.WriteString(fmt.Sprintf("I paid %s the sum of %s. ", c.OrganizationName, amountPhrase(c)))
	} else {
		b.WriteString(fmt.Sprintf("I entered into a transaction with %s. ", c.OrganizationName))
	}

	if strings.TrimSpace(c.Description) != "" {
		b.WriteString(strings.TrimSpace(c.Description))
		if !strings.HasSuffix(b.String(), ".") {
			b.WriteString(".")
		}
	} else {
		b.WriteString("The goods or services provided were not as agreed.")
	}

	return b.String()
}

// amountPhrase renders the purchase amount with two fixed decimals and the
// case currency, e.g. "250.00 GBP".
func amountPhrase(c *models.Case) string {
	if c.PurchaseAmount == nil {
		return ""
	}
	currency := c.Currency
	if currency == "" {
		currency = "GBP"
	}
	return c.PurchaseAmount.StringFixed(2) + " " + currency
}

// citationProse renders the merged legal citations as a single paragraph
func citationProse(citations []models.LegalCitation) string {
	var b strings.Builder
	b.WriteString("My position is supported by ")

	for i, c := range citations {
		if i > 0 {
			if i == len(citations)-1 {
				b.WriteString(" and ")
			} else {
				b.WriteString(", ")
			}
		}
		b.WriteString(c.Law)
		if c.Section != "" {
			b.WriteString(fmt.Sprintf(" (%s)", c.Section))
		}
	}
	b.WriteString(".")

	if first := citations[0]; first.Summary != "" {
		b.WriteString(" " + strings.TrimSpace(first.Summary))
		if !strings.HasSuffix(first.Summary, ".") {
			b.WriteString(".")
		}
	}

	return b.String()
}

// outcomeParagraph renders the remedy the complainant seeks. The
// system-suggested variant is resolved to a concrete remedy here; the
// sentinel value itself never appears in a letter.
func outcomeParagraph(c *models.Case) string {
	outcomes := c.DesiredOutcomes
	if len(outcomes) == 0 {
		outcomes = []string{models.OutcomeSystemSuggested}
	}

	phrases := make([]string, 0, len(outcomes))
	seen := make(map[string]bool)
	for _, outcome := range outcomes {
		if outcome == models.OutcomeSystemSuggested {
			outcome = suggestOutcome(c)
		}
		if seen[outcome] {
			continue
		}
		seen[outcome] = true
		phrases = append(phrases, outcomePhrase(outcome, c))
	}

	return "To resolve this matter, I require " + joinProse(phrases) + ". I expect a substantive response within 14 days of the date of this letter."
}

// outcomeRules maps description keywords to a suggested remedy. The keyword
// set is policy, not contract; adjust freely without touching the engine.
var outcomeRules = []struct {
	keywords []string
	outcome  string
}{
	{[]string{"refund", "money back", "overcharged", "charged twice", "never arrived", "not delivered"}, models.OutcomeRefund},
	{[]string{"broken", "faulty", "defective", "damaged", "stopped working", "not working"}, models.OutcomeReplacement},
	{[]string{"repair", "fix"}, models.OutcomeRepair},
	{[]string{"rude", "staff", "mistreated", "discriminat", "apology", "apologise", "apologize"}, models.OutcomeApology},
	{[]string{"delay", "cancelled", "canceled", "missed", "inconvenience", "distress"}, models.OutcomeCompensation},
}

// suggestOutcome infers a concrete remedy from the case facts when the
// complainant asked the system to choose.
func suggestOutcome(c *models.Case) string {
	text := strings.ToLower(c.Title + " " + c.Description)
	for _, rule := range outcomeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.outcome
			}
		}
	}
	if c.PurchaseAmount != nil && c.PurchaseAmount.IsPositive() {
		return models.OutcomeRefund
	}
	return models.OutcomeApology
}

func outcomePhrase(outcome string, c *models.Case) string {
	switch outcome {
	case models.OutcomeRefund:
		if c.PurchaseAmount != nil {
			return fmt.Sprintf("a full refund of %s", amountPhrase(c))
		}
		return "a full refund of the amount paid"
	case models.OutcomeReplacement:
		return "a replacement provided at no further cost"
	case models.OutcomeRepair:
		return "a repair carried out at no further cost"
	case models.OutcomeCompensation:
		return "appropriate compensation for the inconvenience and loss caused"
	case models.OutcomeApology:
		return "a written apology"
	}
	return outcome
}

func joinProse(items []string) string {
	switch len(items) {
	case 0:
		return "an appropriate remedy"
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}

func closingParagraph(c *models.Case, t models.LetterType, lctx providers.LetterContext) string {
	switch t {
	case models.LetterInitial:
		return "If I do not receive a satisfactory response within 14 days, I will escalate this complaint, including referral to the relevant ombudsman or court proceedings if necessary."
	case models.LetterFollowUp:
		return "If I do not receive a response to this letter within 14 days, I will escalate the matter without further notice."
	case models.LetterResponseCounter:
		return "I ask you to reconsider your position in light of the above. If we cannot resolve this matter directly, I will pursue the remedies available to me."
	case models.LetterEscalation:
		return "I have given the organization a reasonable opportunity to resolve this complaint and it has failed to do so. I ask that you investigate and direct an appropriate remedy."
	case models.LetterBeforeAction:
		return "If I do not receive the remedy set out above within 14 days of the date of this letter, I will issue court proceedings against you without further notice. This letter is written in accordance with the applicable pre-action requirements."
	case models.LetterChargeback:
		reference := "the disputed transaction"
		if c.PurchaseAmount != nil {
			reference = fmt.Sprintf("the disputed transaction of %s", amountPhrase(c))
		}
		return fmt.Sprintf("I have attempted to resolve this matter with the merchant directly and have been unable to do so. I therefore ask that you reverse %s under your chargeback scheme.", reference)
	}
	return "I look forward to your prompt response."
}
