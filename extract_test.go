package b64img

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPatternPriority(t *testing.T) {
	// The stylesheet reference uses an upper-case scheme, which only the
	// case-insensitive CSS recognizer accepts.
	text := `<style>.logo { background: url("DATA:image/gif;base64,` + gifB64 + `") }</style>
<p>inline: data:image/png;base64,` + pngB64 + `</p>`

	got := New().Extract(text)
	require.Len(t, got, 2)
	assert.Equal(t, ExtractedImage{Base64: pngB64, MIMEType: "image/png", Source: SourceDataURI}, got[0])
	assert.Equal(t, ExtractedImage{Base64: gifB64, MIMEType: "image/gif", Source: SourceCSSURL}, got[1])
}

func TestExtractDoesNotDeduplicateAcrossRecognizers(t *testing.T) {
	text := `<img src="data:image/png;base64,` + pngB64 + `">
<div style="background:url(data:image/gif;base64,` + gifB64 + `)"></div>`

	got := New().Extract(text)
	require.Len(t, got, 4)

	var sources []SourcePattern
	for _, img := range got {
		sources = append(sources, img.Source)
	}
	assert.Equal(t, []SourcePattern{SourceDataURI, SourceDataURI, SourceHTMLImg, SourceCSSURL}, sources)
	assert.Equal(t, pngB64, got[0].Base64)
	assert.Equal(t, gifB64, got[1].Base64)
	assert.Equal(t, pngB64, got[2].Base64)
	assert.Equal(t, gifB64, got[3].Base64)
}

func TestExtractStripsWhitespaceFromPayload(t *testing.T) {
	// The first line break comes before the minimum payload length, so only
	// the HTML recognizer, which sees the whole attribute, can match.
	wrapped := pngB64[:12] + "\r\n  " + pngB64[12:24] + "\n" + pngB64[24:36] + "\n" + pngB64[36:48] + "\n" + pngB64[48:60] + "\n" + pngB64[60:]
	got := New().Extract(`<img src="data:image/png;base64,` + wrapped + `">`)

	require.Len(t, got, 1)
	assert.Equal(t, SourceHTMLImg, got[0].Source)
	assert.Equal(t, pngB64, got[0].Base64)
}

func TestExtractWholeContentFallback(t *testing.T) {
	tests := []struct {
		name string
		text string
		mime string
	}{
		{"jpeg", jpegB64, "image/jpeg"},
		{"png wrapped", pngB64[:40] + "\n" + pngB64[40:], "image/png"},
		{"gif", gifB64, "image/gif"},
		{"webp", "UklGRiIAAABXRUJQVlA4IBYAAAAwAQCdASoBAAEADsD+JaQAA3AAAAAA", "image/webp"},
		{"svg", base64.StdEncoding.EncodeToString([]byte(`<svg><rect width="1" height="1"/></svg>`)), "image/svg+xml"},
		{"bmp", "Qk02AAAAAAAAADYAAAAoAAAAAQAAAAEAAAABABgAAAAAAAAAAAA=", "image/bmp"},
		{"icon", "AAABAAEAAQEAAAEAIAAwAAAAFgAAACgAAAAB", "image/x-icon"},
		{"unknown defaults to png", "QUJDREVGR0hJSktMTU5PUFFSU1RVVldYWVo=", "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New().Extract(tt.text)
			require.Len(t, got, 1)
			assert.Equal(t, SourceWholeContent, got[0].Source)
			assert.Equal(t, tt.mime, got[0].MIMEType)
			assert.Equal(t, stripWhitespace(tt.text), got[0].Base64)
		})
	}
}

func TestExtractFallbackGating(t *testing.T) {
	tests := map[string]string{
		"prose":             "this is plain prose, definitely not an image!",
		"too short":         "iVBORw0KGgoAAAANSUhE",
		"base64 with noise": pngB64 + "*",
		"empty":             "",
		"whitespace only":   " \n\t ",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			got := New().Extract(text)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestExtractContentSniffing(t *testing.T) {
	tiff := append([]byte("II*\x00"), make([]byte, 60)...)
	b64 := base64.StdEncoding.EncodeToString(tiff)

	got := New().Extract(b64)
	require.Len(t, got, 1)
	assert.Equal(t, "image/png", got[0].MIMEType)

	got = New(WithContentSniffing(true)).Extract(b64)
	require.Len(t, got, 1)
	assert.Equal(t, "image/tiff", got[0].MIMEType)

	// Non-image content keeps the default.
	text := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("plain text ", 8)))
	got = New(WithContentSniffing(true)).Extract(text)
	require.Len(t, got, 1)
	assert.Equal(t, "image/png", got[0].MIMEType)
}

func TestExtractProgress(t *testing.T) {
	e := New()

	msgs, err := process(t, e, Request{ID: "r1", Action: ActionExtract, Text: "data:image/png;base64," + pngB64})
	require.NoError(t, err)
	progress, terminal := splitMessages(t, msgs)
	assert.Equal(t, []int{10, 33, 56, 100}, percents(progress))
	assert.Equal(t, KindExtractResult, terminal.Kind)
	require.NotNil(t, terminal.Metrics)
	assert.Equal(t, int64(len("data:image/png;base64,"+pngB64)), terminal.Metrics.ByteSize)

	msgs, err = process(t, e, Request{ID: "r2", Action: ActionExtract, Text: "nothing here"})
	require.NoError(t, err)
	progress, terminal = splitMessages(t, msgs)
	assert.Equal(t, []int{10, 33, 56, 80, 100}, percents(progress))
	assert.Empty(t, terminal.Results)
}

func TestExtractFromBytes(t *testing.T) {
	e := New()
	msgs, err := process(t, e, Request{
		Action: ActionExtract,
		Bytes:  []byte("\xEF\xBB\xBFdata:image/png;base64," + pngB64),
	})
	require.NoError(t, err)
	_, terminal := splitMessages(t, msgs)
	require.Len(t, terminal.Results, 1)
	assert.Equal(t, pngB64, terminal.Results[0].Base64)
}

type fixedRecognizer struct {
	name    SourcePattern
	matches []Match
}

func (r fixedRecognizer) Name() SourcePattern    { return r.name }
func (r fixedRecognizer) FindAll(string) []Match { return r.matches }

func TestCustomRecognizerPriority(t *testing.T) {
	custom := fixedRecognizer{name: "custom", matches: []Match{{Subtype: "avif", Payload: "AAAA BBBB CCCC DDDD EEEE"}}}
	e := New(WithRecognizer(custom, 1.5))

	names := []SourcePattern{}
	for _, r := range e.Recognizers() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []SourcePattern{SourceDataURI, SourceHTMLImg, "custom", SourceCSSURL}, names)

	got := e.Extract("irrelevant")
	require.Len(t, got, 1)
	assert.Equal(t, ExtractedImage{Base64: "AAAABBBBCCCCDDDDEEEE", MIMEType: "image/avif", Source: "custom"}, got[0])
}
