package b64img

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	// 1x1 transparent PNG.
	pngB64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="
	// Start of a JFIF JPEG.
	jpegB64 = "/9j/4AAQSkZJRgABAQEASABIAAD/2wBDAAMCAgICAgMCAgIDAwMDBAYEBAQEBAgGBgUGBwkIBwcHBwgJCgoICgoKCAwLCwsL"
	// 1x1 GIF.
	gifB64 = "R0lGODlhAQABAIAAAP///wAAACH5BAEAAAAALAAAAAABAAEAAAICRAEAOw=="
)

// process runs req on e and returns every emitted message.
func process(t *testing.T, e *Engine, req Request) ([]Message, error) {
	t.Helper()
	var msgs []Message
	err := e.Process(req, func(m Message) { msgs = append(msgs, m) })
	return msgs, err
}

// splitMessages separates progress messages from the terminal one and checks
// that exactly one terminal message came last.
func splitMessages(t *testing.T, msgs []Message) ([]Message, Message) {
	t.Helper()
	require.NotEmpty(t, msgs)
	terminal := msgs[len(msgs)-1]
	require.True(t, terminal.Terminal(), "last message must be terminal, got %s", terminal.Kind)
	progress := msgs[:len(msgs)-1]
	for _, m := range progress {
		require.Equal(t, KindProgress, m.Kind)
	}
	return progress, terminal
}

func percents(msgs []Message) []int {
	out := make([]int, len(msgs))
	for i, m := range msgs {
		out[i] = m.Percent
	}
	return out
}

// requireMonotonic checks that percents never go down and end at 100.
func requireMonotonic(t *testing.T, progress []Message) {
	t.Helper()
	require.NotEmpty(t, progress)
	for i := 1; i < len(progress); i++ {
		require.GreaterOrEqual(t, progress[i].Percent, progress[i-1].Percent,
			"progress went backwards: %v", percents(progress))
	}
	require.Equal(t, 100, progress[len(progress)-1].Percent)
}
