package providers

import (
	"context"
	"fmt"
	"strings"
)

// GeminiEvidenceAnalyzer implements EvidenceAnalyzer against the Gemini
// multimodal API.
type GeminiEvidenceAnalyzer struct {
	client *GeminiClient
}

// NewGeminiEvidenceAnalyzer creates an evidence vision adapter
func NewGeminiEvidenceAnalyzer(client *GeminiClient) *GeminiEvidenceAnalyzer {
	return &GeminiEvidenceAnalyzer{client: client}
}

// AnalyzeFiles inspects uploaded evidence files and reports findings per file
func (a *GeminiEvidenceAnalyzer) AnalyzeFiles(ctx context.Context, files []EvidenceFile) ([]EvidenceFinding, error) {
	if len(files) == 0 {
		return nil, nil
	}

	var names strings.Builder
	for i, f := range files {
		if i > 0 {
			names.WriteString(", ")
		}
		names.WriteString(f.Name)
	}

	prompt := fmt.Sprintf(`You are reviewing evidence files attached to a consumer complaint: %s

TASK:
For each file, identify what kind of evidence it is and what it proves.

OUTPUT REQUIREMENTS:
- Respond with a JSON array only, no prose
- One element per file, in the order the files appear
- Each element:
{
  "file_name": string,
  "type": string (e.g. "receipt", "email", "photo", "contract", "bank statement"),
  "description": string (one or two sentences on what the file shows),
  "key_details": [string] (dates, amounts, reference numbers, names),
  "extracted_text": string (verbatim text if legible, else omit),
  "suggested_use": string (how this supports the complaint),
  "strength": "strong"|"moderate"|"supportive"
}
- Report only what is visible in the file; never invent details`,
		names.String())

	parts := make([]part, 0, len(files)+1)
	parts = append(parts, textPart(prompt))
	for _, f := range files {
		parts = append(parts, filePart(f.MimeType, f.Data))
	}

	raw, err := a.client.generateVision(ctx, parts, 0.1)
	if err != nil {
		return nil, err
	}

	var findings []EvidenceFinding
	if err := decodeJSONResponse(raw, &findings); err != nil {
		return nil, err
	}

	// Backfill file names by position when the model drops them
	for i := range findings {
		if findings[i].FileName == "" && i < len(files) {
			findings[i].FileName = files[i].Name
		}
	}

	return findings, nil
}
