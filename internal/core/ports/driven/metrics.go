package driven

import (
	"time"

	"github.com/custodia-labs/imgscout/internal/core/domain"
)

// MetricsRecorder receives operational events from the repository.
type MetricsRecorder interface {
	// SearchIssued is called once per accepted search call.
	SearchIssued()

	// SearchCompleted is called with the terminal code (CodeNone on success)
	// and the time from issue to completion.
	SearchCompleted(code domain.ErrorCode, elapsed time.Duration)

	// StorageTask is called after each storage operation ("upsert", "lookup").
	StorageTask(op string, err error)

	// QueueDepth reports the number of storage tasks waiting to run.
	QueueDepth(n int)
}
