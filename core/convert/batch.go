package convert

import (
	"context"

	"github.com/FocuswithJustin/transmark/internal/workerpool"
)

// Job is one input of a batch conversion.
type Job struct {
	// Name labels the job in results (e.g., a file path).
	Name  string
	Input string
	From  string
	To    string
}

// JobResult pairs a job with its outcome.
type JobResult struct {
	Job    Job
	Result *Result
	Err    error
}

// ConvertAll converts every job using up to workers goroutines (0 means
// GOMAXPROCS) and returns the results in job order. A failing job does not
// stop the others.
func ConvertAll(ctx context.Context, jobs []Job, workers int, opts Options) []JobResult {
	return workerpool.Map(jobs, workers, func(_ int, job Job) JobResult {
		if err := ctx.Err(); err != nil {
			return JobResult{Job: job, Err: err}
		}
		res, err := Convert(ctx, job.Input, job.From, job.To, opts)
		return JobResult{Job: job, Result: res, Err: err}
	})
}
