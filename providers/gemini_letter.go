package providers

import (
	"context"
	"fmt"
	"strings"
)

// GeminiLetterWriter implements LetterWriter against the Gemini API
type GeminiLetterWriter struct {
	client *GeminiClient
}

// NewGeminiLetterWriter creates a letter generation adapter
func NewGeminiLetterWriter(client *GeminiClient) *GeminiLetterWriter {
	return &GeminiLetterWriter{client: client}
}

// letterTypeInstructions maps each letter type to its drafting brief
var letterTypeInstructions = map[string]string{
	"initial":              "Write the first formal complaint letter to the organization. Set out the facts, the failings, the legal basis, and the remedy sought, with a 14 day deadline to respond.",
	"follow-up":            "Write a follow-up to a complaint the organization has not answered. Reference the earlier letter and its date, restate the remedy sought, and make clear the matter will be escalated if ignored.",
	"response-counter":     "Write a rebuttal to the organization's unsatisfactory response. Address their position point by point, explain why it is inadequate against the legal basis, and restate the remedy sought.",
	"escalation":           "Write a letter escalating the complaint to the relevant ombudsman or regulator. Summarize the dispute history, the organization's failure to resolve it, and the outcome sought.",
	"letter-before-action": "Write a formal letter before action. State that court proceedings will be issued if the remedy is not provided within 14 days, referencing the dispute history and legal basis.",
	"chargeback":           "Write a letter to the complainant's card issuer requesting a chargeback for the disputed payment. Set out the transaction details, what went wrong, and the attempts made to resolve it with the merchant.",
}

// WriteLetter produces the raw text of one letter
func (w *GeminiLetterWriter) WriteLetter(ctx context.Context, req LetterRequest) (string, error) {
	instructions, ok := letterTypeInstructions[req.LetterType]
	if !ok {
		return "", fmt.Errorf("unknown letter type: %s", req.LetterType)
	}

	var analysis strings.Builder
	analysis.WriteString(fmt.Sprintf("Confidence score: %d/100\n", req.Analysis.ConfidenceScore))
	for _, issue := range req.Analysis.Issues {
		analysis.WriteString("- " + issue + "\n")
	}
	for _, c := range req.Analysis.LegalBasis {
		analysis.WriteString(fmt.Sprintf("Law: %s", c.Law))
		if c.Section != "" {
			analysis.WriteString(", " + c.Section)
		}
		if c.Summary != "" {
			analysis.WriteString(" (" + c.Summary + ")")
		}
		analysis.WriteString("\n")
	}

	var evidence strings.Builder
	for _, e := range req.Evidence {
		evidence.WriteString(fmt.Sprintf("- %s [%s]: %s", e.Filename, e.Type, e.Description))
		if e.SuggestedUse != "" {
			evidence.WriteString(" Use: " + e.SuggestedUse)
		}
		if e.Context != "" {
			evidence.WriteString(" Complainant's note: " + e.Context)
		}
		evidence.WriteString("\n")
	}
	if evidence.Len() == 0 {
		evidence.WriteString("None attached.\n")
	}

	var history strings.Builder
	for _, l := range req.History {
		history.WriteString(fmt.Sprintf("- %s letter, subject %q, sent %s\n",
			l.LetterType, l.Subject, l.SentAt.Format("2 January 2006")))
	}
	if history.Len() == 0 {
		history.WriteString("None.\n")
	}

	var extra strings.Builder
	if req.Context.PreviousLetterDate != "" {
		extra.WriteString("Previous letter sent: " + req.Context.PreviousLetterDate + "\n")
	}
	if req.Context.OrganizationOffer != "" {
		extra.WriteString("Organization's offer: " + req.Context.OrganizationOffer + "\n")
	}
	if req.Context.OmbudsmanName != "" {
		extra.WriteString("Ombudsman/regulator: " + req.Context.OmbudsmanName + "\n")
	}
	if req.Context.CardIssuer != "" {
		extra.WriteString("Card issuer: " + req.Context.CardIssuer + "\n")
	}
	if req.Context.Feedback != "" {
		extra.WriteString("Revision instructions from the complainant: " + req.Context.Feedback + "\n")
	}

	prompt := fmt.Sprintf(`You are drafting formal consumer dispute correspondence on behalf of a complainant.

TASK:
%s

CASE FACTS:
%s
CASE ANALYSIS:
%s
EVIDENCE AVAILABLE:
%s
PRIOR CORRESPONDENCE:
%s
ADDITIONAL CONTEXT:
%s
OUTPUT REQUIREMENTS:
- First line must be "Subject: " followed by the subject, then a blank line, then the letter body
- Tone: %s but professional; firm statements of fact and entitlement, no insults or threats beyond stated next steps
- Reference the attached evidence by name where it supports a point
- Use EXACT amounts and dates from the case facts; never estimate or round
- Cite only the laws listed in the case analysis
- Plain text, no markdown
- Close with "Yours faithfully," and no name placeholder beyond that`,
		instructions,
		formatFacts(req.Facts),
		analysis.String(),
		evidence.String(),
		history.String(),
		extra.String(),
		req.Tone,
	)

	return w.client.generate(ctx, prompt, 0.3)
}
