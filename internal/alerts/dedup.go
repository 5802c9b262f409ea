package alerts

import (
	"fmt"
	"time"

	"github.com/stocksentinel/alerts-core/backend/internal/domain"
)

const (
	// DedupWindow is the interval within which an alert with the same
	// (type, title) pair suppresses a new one.
	DedupWindow = 5 * time.Minute

	// BufferCap is the maximum number of alerts kept in the rolling buffer
	BufferCap = 10
)

// Notifier receives one line of text per accepted alert
type Notifier interface {
	Notify(id, text string)
}

// Merge folds newly aggregated alerts into the rolling buffer. A new alert
// is suppressed when the buffer already holds a non-dismissed alert with the
// same (type, title) whose timestamp is within the dedup window; dismissed
// entries still block recreation. Accepted alerts are prepended newest first
// and the buffer is trimmed to BufferCap. Each accepted alert fires exactly
// one notification.
//
// A dismissed duplicate inside the window also suppresses the new alert;
// that matches the behavior this engine replaces and is flagged as a product
// question in DESIGN.md.
func Merge(buffer []domain.InstantAlert, fresh []domain.InstantAlert, sink Notifier) []domain.InstantAlert {
	for _, alert := range fresh {
		if isDuplicate(buffer, alert) {
			continue
		}

		buffer = append([]domain.InstantAlert{alert}, buffer...)
		if len(buffer) > BufferCap {
			buffer = buffer[:BufferCap]
		}

		if sink != nil {
			sink.Notify(alert.ID, fmt.Sprintf("%s: %s", alert.Title, alert.Message))
		}
	}
	return buffer
}

func isDuplicate(buffer []domain.InstantAlert, alert domain.InstantAlert) bool {
	for _, existing := range buffer {
		if existing.Type != alert.Type || existing.Title != alert.Title {
			continue
		}
		delta := alert.Timestamp.Sub(existing.Timestamp)
		if delta < 0 {
			delta = -delta
		}
		if delta < DedupWindow {
			return true
		}
	}
	return false
}
