package b64img

import (
	"fmt"
	"strings"
)

// SampleHeader starts every generated sample: a data URL for a 1x1 WebP.
// Everything after it is random filler and does not decode to an image.
const SampleHeader = "data:image/webp;base64,UklGRiIAAABXRUJQVlA4IBYAAAAwAQCdASoBAAEADsD+JaQAA3AAAAAA"

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// GenerateSample returns a synthetic payload of len(SampleHeader) + sizeMB MiB.
func (e *Engine) GenerateSample(sizeMB int) (string, error) {
	s, _, err := e.generateSample(sizeMB, newProgressReporter("", func(Message) {}))
	return s, err
}

func (e *Engine) generateSample(sizeMB int, p *progressReporter) (string, Metrics, error) {
	if sizeMB <= 0 {
		return "", Metrics{}, newError(KindMalformedPayload, string(ActionGenerateSample),
			"size must be a positive number of megabytes, got %d", sizeMB)
	}
	if sizeMB > e.maxSampleMB {
		return "", Metrics{}, newError(KindMalformedPayload, string(ActionGenerateSample),
			"size %dMB exceeds the %dMB limit", sizeMB, e.maxSampleMB)
	}

	start := e.now()
	target := sizeMB * bytesPerMB
	chunks := (target + e.sampleChunkSize - 1) / e.sampleChunkSize

	var sb strings.Builder
	sb.Grow(len(SampleHeader) + target)
	sb.WriteString(SampleHeader)

	buf := make([]byte, e.sampleChunkSize)
	generated := 0
	for i := 0; i < chunks; i++ {
		n := min(e.sampleChunkSize, target-generated)
		e.fillBase64(buf[:n])
		sb.Write(buf[:n])
		generated += n

		if chunkTick(i, chunks, e.sampleStride) {
			percent := ((i+1)*200 + chunks) / (2 * chunks)
			p.report(percent, fmt.Sprintf("generating sample: %s / %dMB", formatMB(int64(generated)), sizeMB))
		}
	}

	out := sb.String()
	return out, e.metricsSince(start, int64(len(out))), nil
}

// fillBase64 fills buf with characters drawn uniformly from the base64
// alphabet, ten characters per 64-bit draw.
func (e *Engine) fillBase64(buf []byte) {
	for i := 0; i < len(buf); {
		r := e.rand.Uint64()
		for k := 0; k < 10 && i < len(buf); k++ {
			buf[i] = base64Alphabet[r&63]
			r >>= 6
			i++
		}
	}
}
