package b64img

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Encode returns the standard base64 encoding of data.
func (e *Engine) Encode(data []byte) string {
	b64, _ := e.encode(data, newProgressReporter("", func(Message) {}))
	return b64
}

// encode feeds data to a streaming encoder one chunk at a time. The encoder
// carries the 0-2 byte remainder of each chunk into the next, so the output
// is identical to encoding data in one call.
func (e *Engine) encode(data []byte, p *progressReporter) (string, Metrics) {
	start := e.now()
	total := len(data)

	var sb strings.Builder
	sb.Grow(base64.StdEncoding.EncodedLen(total))
	enc := base64.NewEncoder(base64.StdEncoding, &sb)

	if total == 0 {
		_ = enc.Close()
		p.report(100, encodeLabel(0, 0))
		return sb.String(), e.metricsSince(start, 0)
	}

	chunks := (total + e.encodeChunkSize - 1) / e.encodeChunkSize
	for i := 0; i < chunks; i++ {
		lo := i * e.encodeChunkSize
		hi := min(lo+e.encodeChunkSize, total)
		// Writes to a strings.Builder cannot fail.
		_, _ = enc.Write(data[lo:hi])

		if chunkTick(i, chunks, e.encodeStride) {
			p.report(hi*100/total, encodeLabel(hi, total))
		}
	}
	_ = enc.Close()

	return sb.String(), e.metricsSince(start, int64(total))
}

func encodeLabel(processed, total int) string {
	return fmt.Sprintf("encoding: %s / %s", formatMB(int64(processed)), formatMB(int64(total)))
}
