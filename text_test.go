package b64img

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

func TestDecodeText(t *testing.T) {
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("<img src=\"x\">")
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    []byte
		charset string
		want    string
	}{
		{"utf-8 passthrough", []byte("héllo " + pngB64), "", "héllo " + pngB64},
		{"utf-8 bom stripped", append([]byte{0xEF, 0xBB, 0xBF}, "abc"...), "", "abc"},
		{"utf-16le bom", []byte(utf16), "", "<img src=\"x\">"},
		{"forced windows-1252", []byte{'c', 'a', 'f', 0xE9}, "windows-1252", "café"},
		{"unknown charset falls through", []byte("plain"), "no-such-charset", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeText(tt.data, tt.charset))
		})
	}
}

func TestDecodeTextShiftJIS(t *testing.T) {
	want := "画像 data:image/png;base64," + pngB64
	encoded, err := japanese.ShiftJIS.NewEncoder().String(want)
	require.NoError(t, err)

	assert.Equal(t, want, DecodeText([]byte(encoded), "shift_jis"))
}

func TestLookupEncoding(t *testing.T) {
	for _, label := range []string{"UTF-16LE", "UTF-16BE", "GB-18030", "ISO-8859-1", "utf-8"} {
		assert.NotNil(t, lookupEncoding(label), label)
	}
	assert.Nil(t, lookupEncoding("klingon"))
}
