package analyst

import (
	"context"
	"fmt"

	"analyst-backend/internal/llm"
	"analyst-backend/internal/recovery"
	"analyst-backend/internal/scrape"
)

// Service runs the per-request pipeline: scrape, prompt assembly, model
// invocation, JSON recovery. It holds no mutable state across requests.
type Service struct {
	Scraper *scrape.Scraper
	Model   llm.Client
	GenCfg  llm.GenerationConfig
	Recover recovery.Engine
}

// Outcome carries the recovery result plus the pieces worth logging.
type Outcome struct {
	Result recovery.Result
	Prompt string
}

// Analyze processes one request end to end. Scrape failures degrade into
// prompt text; only a failed or empty model call returns an error.
func (s *Service) Analyze(ctx context.Context, req AnalysisRequest) (Outcome, error) {
	scraped := s.Scraper.Collect(ctx, req.Questions)

	prompt := llm.BuildPrompt(llm.PromptInput{
		Questions:     req.Questions,
		ScrapedData:   scraped,
		CSVText:       req.CSVText,
		HasCSV:        req.HasCSV,
		ImageFilename: req.ImageFilename,
	})

	text, err := s.Model.Invoke(ctx, prompt, s.GenCfg)
	if err != nil {
		return Outcome{Prompt: prompt}, fmt.Errorf("%w: %v", ErrModelInvocation, err)
	}

	return Outcome{
		Result: s.Recover.Recover(text),
		Prompt: prompt,
	}, nil
}
