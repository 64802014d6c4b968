package llm

import (
	_ "embed"
	"strings"
)

//go:embed prompts/instruction.txt
var instructionBlock string

// PromptInput holds the per-request pieces the prompt is assembled from.
type PromptInput struct {
	Questions     string
	ScrapedData   string
	CSVText       string
	HasCSV        bool
	ImageFilename string
}

// BuildPrompt deterministically concatenates the instruction block, the
// request text, the scraped-data block, the CSV block, and an image note,
// in that fixed order. Empty optional sections are omitted entirely.
func BuildPrompt(in PromptInput) string {
	parts := []string{
		strings.TrimSpace(instructionBlock),
		"Questions: " + in.Questions,
	}
	if in.ScrapedData != "" {
		parts = append(parts, "Scraped Data:\n"+in.ScrapedData)
	}
	if in.HasCSV {
		parts = append(parts, "CSV Data:\n"+in.CSVText)
	}
	if in.ImageFilename != "" {
		parts = append(parts, "Image file provided: "+in.ImageFilename)
	}
	return strings.Join(parts, "\n\n")
}
