package pipeline

import (
	"context"
	"runtime"
	"sync"

	"docaudit/internal/aidetect"
)

type Analyzer interface {
	Analyze(ctx context.Context, in aidetect.Input) aidetect.Report
}

type job struct {
	index int
	input aidetect.Input
}

// AnalyzeAll runs independent documents on a bounded worker pool. Reports
// come back in input order. Inputs not yet dispatched when ctx is done get a
// report carrying a cancellation entry instead of scores.
func AnalyzeAll(ctx context.Context, a Analyzer, inputs []aidetect.Input, workers int) []aidetect.Report {
	if len(inputs) == 0 || a == nil {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < 1 {
			workers = 1
		}
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	out := make([]aidetect.Report, len(inputs))
	jobs := make(chan job)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				out[j.index] = a.Analyze(ctx, j.input)
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(inputs); next++ {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- job{index: next, input: inputs[next]}:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(inputs); i++ {
		out[i] = cancelled(inputs[i], ctx.Err())
	}
	return out
}

func cancelled(in aidetect.Input, err error) aidetect.Report {
	return aidetect.Report{
		DocumentID: in.DocumentID,
		Sentences:  []aidetect.SentenceScore{},
		Analysis: aidetect.Analysis{
			Flags:           []string{},
			Recommendations: []string{},
			ModelUsed:       aidetect.ModelHeuristic,
		},
		Errors: []aidetect.ErrorEntry{{
			Stage:     "dispatch",
			Message:   err.Error(),
			Type:      "cancelled",
			Retryable: true,
		}},
		Traces: []aidetect.SpanTrace{},
	}
}
