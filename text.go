package b64img

import (
	"bytes"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeText converts raw input to a UTF-8 string for extraction. A non-empty
// charset is tried first; otherwise a byte order mark, plain UTF-8 and finally
// chardet detection decide. Undecodable input is returned as-is.
func DecodeText(data []byte, charset string) string {
	if charset != "" {
		if enc := lookupEncoding(charset); enc != nil {
			if decoded, err := enc.NewDecoder().Bytes(data); err == nil {
				return string(decoded)
			}
		}
	}

	if hasBOM(data) {
		dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		if decoded, _, err := transform.Bytes(dec, data); err == nil {
			return string(decoded)
		}
	}

	if utf8.Valid(data) {
		return string(data)
	}

	return decodeWithDetection(data)
}

// decodeWithDetection tries chardet's candidates in confidence order and
// returns the first one that decodes cleanly.
func decodeWithDetection(data []byte) string {
	results, err := chardet.NewTextDetector().DetectAll(data)
	if err != nil {
		return string(data)
	}
	for _, r := range results {
		enc := lookupEncoding(r.Charset)
		if enc == nil {
			continue
		}
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
			continue
		}
		return string(decoded)
	}
	return string(data)
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE})
}

// lookupEncoding maps a charset label (as used in HTML and by chardet) to an
// encoding, or nil when it is unknown.
func lookupEncoding(charset string) encoding.Encoding {
	switch charset {
	case "UTF-16LE":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "UTF-16BE":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "GB-18030":
		charset = "gb18030"
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil
	}
	return enc
}
