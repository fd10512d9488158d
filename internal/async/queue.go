package async

import (
	"context"
	"time"
)

// Job is one dossier payload awaiting processing: a JSON file or a directory
// of raw text files under the inbox.
type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
