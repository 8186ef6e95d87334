package render

import "strings"

// transcribePrompt is the shared prompt used by all vision models to read a payroll receipt
const transcribePrompt = `You are reading a scanned payroll receipt (recibo de nómina). Transcribe ALL of the text on the page exactly as printed.

Rules:
- Keep the original language, spelling, capitalization and accents
- Keep each printed line on its own line, top to bottom, left to right
- Copy numbers exactly, including currency symbols, commas and decimal points
- Do not summarize, translate, correct or add anything
- Do not use markdown or code blocks
- If the page has no readable text, return an empty response`

// cleanTranscript removes markdown fences and surrounding whitespace that models
// sometimes add despite the prompt
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// drop the language tag on the opening fence, if any
		if i := strings.Index(text, "\n"); i >= 0 && !strings.ContainsAny(text[:i], " \t") {
			text = text[i+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}
