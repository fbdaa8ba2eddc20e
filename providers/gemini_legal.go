package providers

import (
	"context"
	"fmt"
	"strings"
)

// GeminiLegalResearcher implements LegalResearcher against the Gemini API
type GeminiLegalResearcher struct {
	client *GeminiClient
}

// NewGeminiLegalResearcher creates a legal research adapter
func NewGeminiLegalResearcher(client *GeminiClient) *GeminiLegalResearcher {
	return &GeminiLegalResearcher{client: client}
}

// Research looks up statutes and regulations relevant to the case facts
func (r *GeminiLegalResearcher) Research(ctx context.Context, facts CaseFacts) ([]ResearchCitation, error) {
	prompt := fmt.Sprintf(`You are a consumer rights legal researcher.

CASE FACTS:
%s

TASK:
Identify the statutes, regulations, and codes of practice most relevant to this consumer dispute in the stated jurisdiction.

OUTPUT REQUIREMENTS:
- Respond with a JSON array only, no prose
- Each element: {"name": string, "section": string, "summary": string, "relevance": "high"|"medium"|"low"}
- "name" is the full official name of the law including year where applicable
- "summary" is one sentence on why it applies to these facts
- At most 6 entries, ordered most relevant first
- Only cite laws you are confident exist; never invent a statute`,
		formatFacts(facts))

	raw, err := r.client.generate(ctx, prompt, 0.1)
	if err != nil {
		return nil, err
	}

	var citations []ResearchCitation
	if err := decodeJSONResponse(raw, &citations); err != nil {
		return nil, err
	}

	// Drop entries with no usable name rather than passing them downstream
	filtered := citations[:0]
	for _, c := range citations {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		filtered = append(filtered, c)
	}

	return filtered, nil
}
