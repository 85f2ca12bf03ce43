package b64img

import "fmt"

const bytesPerMB = 1024 * 1024

// progressReporter emits progress messages for one request. It clamps percent
// to 0..100 and never lets it go backwards.
type progressReporter struct {
	requestID string
	emit      Emitter
	last      int
}

func newProgressReporter(requestID string, emit Emitter) *progressReporter {
	return &progressReporter{requestID: requestID, emit: emit}
}

func (p *progressReporter) report(percent int, label string) {
	if percent > 100 {
		percent = 100
	}
	if percent < p.last {
		percent = p.last
	}
	p.last = percent
	p.emit(Message{
		Kind:      KindProgress,
		RequestID: p.requestID,
		Percent:   percent,
		Label:     label,
	})
}

// chunkTick reports whether chunk i of total (zero-based) is due a progress
// event under the given stride. The last chunk is always due.
func chunkTick(i, total, stride int) bool {
	if stride <= 1 {
		return true
	}
	return i%stride == 0 || i == total-1
}

func formatMB(n int64) string {
	return fmt.Sprintf("%.1fMB", float64(n)/bytesPerMB)
}
