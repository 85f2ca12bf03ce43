package b64img

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSampleExactLength(t *testing.T) {
	s, err := New(WithSeed(1)).GenerateSample(1)
	require.NoError(t, err)

	assert.Len(t, s, len(SampleHeader)+1024*1024)
	assert.True(t, strings.HasPrefix(s, SampleHeader))

	filler := s[len(SampleHeader):]
	assert.True(t, isBase64(filler))
	assert.NotContains(t, filler, "=")
}

func TestGenerateSampleUsesWholeAlphabet(t *testing.T) {
	s, err := New(WithSeed(2)).GenerateSample(1)
	require.NoError(t, err)

	seen := map[rune]bool{}
	for _, c := range s[len(SampleHeader):] {
		seen[c] = true
	}
	assert.Len(t, seen, len(base64Alphabet))
}

func TestGenerateSampleIsReproducible(t *testing.T) {
	a, err := New(WithSeed(42)).GenerateSample(2)
	require.NoError(t, err)
	b, err := New(WithSeed(42)).GenerateSample(2)
	require.NoError(t, err)
	c, err := New(WithSeed(43)).GenerateSample(2)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerateSampleRejectsBadSize(t *testing.T) {
	e := New(WithMaxSampleMB(4))
	for _, size := range []int{0, -1, 5} {
		_, err := e.GenerateSample(size)
		require.Error(t, err, "size %d", size)
		assert.True(t, IsKind(err, KindMalformedPayload), "size %d: %v", size, err)
	}
}

func TestGenerateSampleProgress(t *testing.T) {
	msgs, err := process(t, New(WithSeed(3)), Request{Action: ActionGenerateSample, SizeMB: 1})
	require.NoError(t, err)
	progress, terminal := splitMessages(t, msgs)

	// 1 MiB in 512 KiB chunks: the first chunk and the last one report.
	assert.Equal(t, []int{50, 100}, percents(progress))
	assert.Equal(t, "generating sample: 0.5MB / 1MB", progress[0].Label)
	assert.Equal(t, "generating sample: 1.0MB / 1MB", progress[1].Label)

	assert.Equal(t, KindSampleResult, terminal.Kind)
	assert.Len(t, terminal.Base64, len(SampleHeader)+1024*1024)
	assert.Equal(t, int64(len(terminal.Base64)), terminal.Metrics.ByteSize)
}

func TestGenerateSampleProgressStride(t *testing.T) {
	// 3 MiB in 256 KiB chunks is 12 chunks; every 4th plus the last report.
	e := New(WithSeed(4), WithSampleChunking(256*1024, 4))
	msgs, err := process(t, e, Request{Action: ActionGenerateSample, SizeMB: 3})
	require.NoError(t, err)
	progress, _ := splitMessages(t, msgs)

	assert.Equal(t, []int{8, 42, 75, 100}, percents(progress))
	requireMonotonic(t, progress)
}

func TestGenerateSampleErrorMessage(t *testing.T) {
	msgs, err := process(t, New(), Request{ID: "s", Action: ActionGenerateSample, SizeMB: 0})
	require.Error(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, KindError, msgs[0].Kind)
	assert.Equal(t, "s", msgs[0].RequestID)
	assert.Contains(t, msgs[0].ErrMessage, "size must be a positive number")
	assert.True(t, IsKind(msgs[0].Err(), KindMalformedPayload))
}
