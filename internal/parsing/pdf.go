package parsing

import (
	"context"
	"strings"

	"github.com/jonathan/star-coach/internal/llm"
	"github.com/jonathan/star-coach/internal/prompts"
)

// PDFMimeType is the MIME type sent with PDF documents.
const PDFMimeType = "application/pdf"

// ExtractPDFText asks the model to transcribe a job description PDF. A model
// failure is an *APICallError; a document without text is a *ValidationError.
func ExtractPDFText(ctx context.Context, client llm.Client, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &ValidationError{Field: "pdf", Message: "no PDF data provided"}
	}

	text, err := client.ExtractDocumentText(ctx, PDFMimeType, data,
		prompts.MustGet("analysis.json", "parse-pdf"), llm.TierStandard)
	if err != nil {
		return "", &APICallError{Message: "failed to extract PDF text", Cause: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ValidationError{Field: "pdf", Message: "no text content could be extracted from this PDF"}
	}
	return text, nil
}
