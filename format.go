package b64img

import (
	"fmt"
	"strings"
)

// DataURL joins a MIME type and base64 payload into a data: URL.
func DataURL(mimeType, b64 string) string {
	return "data:" + mimeType + ";base64," + b64
}

// DecodedSize estimates the decoded byte length of a base64 payload.
func DecodedSize(b64 string) int64 {
	n := int64(len(b64)) / 4 * 3
	switch {
	case strings.HasSuffix(b64, "=="):
		n -= 2
	case strings.HasSuffix(b64, "="):
		n--
	}
	if n < 0 {
		return 0
	}
	return n
}

// FormatFileSize renders a byte count as B, KB or MB.
func FormatFileSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < bytesPerMB:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	}
	return fmt.Sprintf("%.2f MB", float64(n)/bytesPerMB)
}

// Throughput returns megabytes per second for m, or 0 when no time elapsed.
func (m Metrics) Throughput() float64 {
	if m.ElapsedMs <= 0 {
		return 0
	}
	return (float64(m.ByteSize) / bytesPerMB) / (m.ElapsedMs / 1000)
}

var imageFormats = map[string]struct {
	name string
	ext  string
}{
	"image/jpeg":    {"JPEG", "jpg"},
	"image/png":     {"PNG", "png"},
	"image/gif":     {"GIF", "gif"},
	"image/webp":    {"WebP", "webp"},
	"image/svg+xml": {"SVG", "svg"},
	"image/bmp":     {"BMP", "bmp"},
	"image/x-icon":  {"ICO", "ico"},
}

// FormatName returns a short display name for an image MIME type.
func FormatName(mimeType string) string {
	if f, ok := imageFormats[mimeType]; ok {
		return f.name
	}
	if _, sub, ok := strings.Cut(mimeType, "/"); ok && sub != "" {
		return strings.ToUpper(sub)
	}
	return "IMG"
}

// Extension returns a file extension (without dot) for an image MIME type,
// defaulting to png.
func Extension(mimeType string) string {
	if f, ok := imageFormats[mimeType]; ok {
		return f.ext
	}
	return "png"
}
