package imgur

import (
	"fmt"
	"time"
)

// RateLimitError is returned when the application's Imgur quota is spent.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("imgur: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}
