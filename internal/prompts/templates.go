package prompts

import (
	"fmt"
	"strings"
)

const DetectionSystemTemplate = `SYSTEM: You are a forensic reviewer of written documents.
TASK: Estimate how likely the document was machine-generated and how likely it reuses unattributed source text.
CONSTRAINT: Judge the document as a whole. Do not quote it back.
OUTPUT: JSON { "ai_score": number 0-100, "plagiarism_score": number 0-100, "confidence": number 0-100, "features": object of name -> number }`

const DetectionUserTemplate = `DOCUMENT (%d characters%s):
%s`

func DetectionSystemPrompt() string {
	return strings.TrimSpace(DetectionSystemTemplate)
}

// DetectionUserPrompt wraps the document text, noting when it was cut short.
func DetectionUserPrompt(text string, truncated bool) string {
	note := ""
	if truncated {
		note = ", truncated"
	}
	return strings.TrimSpace(fmt.Sprintf(DetectionUserTemplate, len([]rune(text)), note, text))
}
