// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package b64img

import (
	"strings"

	"golang.org/x/net/html"
)

// Match is a single payload found by a Recognizer.
type Match struct {
	// Subtype is the part after "image/", e.g. "png" or "svg+xml".
	Subtype string
	// Payload is the raw base64 text; whitespace is stripped later.
	Payload string
}

// Recognizer finds embedded image payloads in text.
type Recognizer interface {
	// Name labels the results this recognizer produces.
	Name() SourcePattern

	// FindAll returns every non-overlapping match in order of appearance.
	FindAll(text string) []Match
}

const (
	dataRefPrefix = "data:image/"
	dataRefMarker = ";base64,"
)

// parseDataRef parses "data:image/<subtype>;base64,<payload>" starting at
// s[i]. end is the index just past the payload. With fold set, the literal
// parts match case-insensitively.
func parseDataRef(s string, i int, fold bool) (m Match, end int, ok bool) {
	rest := s[i:]
	if fold {
		if !hasPrefixFold(rest, dataRefPrefix) {
			return Match{}, 0, false
		}
	} else if !strings.HasPrefix(rest, dataRefPrefix) {
		return Match{}, 0, false
	}
	j := i + len(dataRefPrefix)

	k := j
	for k < len(s) && isSubtypeChar(s[k]) {
		k++
	}
	if k == j {
		return Match{}, 0, false
	}
	subtype := s[j:k]

	rest = s[k:]
	if fold {
		if !hasPrefixFold(rest, dataRefMarker) {
			return Match{}, 0, false
		}
	} else if !strings.HasPrefix(rest, dataRefMarker) {
		return Match{}, 0, false
	}
	p := k + len(dataRefMarker)

	q := p
	for q < len(s) && isBase64Char(s[q]) {
		q++
	}
	if q-p < minPayloadLen {
		return Match{}, 0, false
	}
	return Match{Subtype: subtype, Payload: s[p:q]}, q, true
}

// dataURIRecognizer finds bare data:image references anywhere in text.
type dataURIRecognizer struct{}

func (dataURIRecognizer) Name() SourcePattern { return SourceDataURI }

func (dataURIRecognizer) FindAll(text string) []Match {
	var matches []Match
	pos := 0
	for pos < len(text) {
		idx := strings.Index(text[pos:], dataRefPrefix)
		if idx < 0 {
			break
		}
		start := pos + idx
		m, end, ok := parseDataRef(text, start, false)
		if !ok {
			pos = start + 1
			continue
		}
		matches = append(matches, m)
		pos = end
	}
	return matches
}

// htmlImgRecognizer finds <img> tags whose source attribute holds a data
// reference. Any attribute whose name ends in "src" counts, which covers
// lazy-loading markup such as data-src.
//
// Tag starts are located in the raw text, so tags inside comments, raw-text
// elements or after an unclosed <script> are found too. Each tag is then
// tokenized on its own.
type htmlImgRecognizer struct{}

func (htmlImgRecognizer) Name() SourcePattern { return SourceHTMLImg }

func (htmlImgRecognizer) FindAll(text string) []Match {
	var matches []Match
	lower := asciiLower(text)
	pos := 0
	for pos < len(text) {
		idx := strings.Index(lower[pos:], "<img")
		if idx < 0 {
			break
		}
		start := pos + idx
		m, n, ok := parseImgTag(text[start:])
		if ok {
			matches = append(matches, m)
		}
		if n > 0 {
			pos = start + n
		} else {
			pos = start + 1
		}
	}
	return matches
}

// parseImgTag tokenizes the tag at the start of s. n is the tag's length when
// s starts with a complete img tag, zero otherwise; ok reports whether the tag
// carries a data reference.
func parseImgTag(s string) (m Match, n int, ok bool) {
	z := html.NewTokenizer(strings.NewReader(s))
	tt := z.Next()
	if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
		return Match{}, 0, false
	}
	n = len(z.Raw())
	name, hasAttr := z.TagName()
	if string(name) != "img" {
		return Match{}, 0, false
	}
	for more := hasAttr; more; {
		var key, val []byte
		key, val, more = z.TagAttr()
		if !strings.HasSuffix(string(key), "src") {
			continue
		}
		value := stripWhitespace(string(val))
		if m, end, ok := parseDataRef(value, 0, true); ok && end == len(value) {
			return m, n, true
		}
	}
	return Match{}, n, false
}

// cssURLRecognizer finds url(...) functions wrapping a data reference, with
// optional quotes and whitespace.
type cssURLRecognizer struct{}

func (cssURLRecognizer) Name() SourcePattern { return SourceCSSURL }

func (cssURLRecognizer) FindAll(text string) []Match {
	var matches []Match
	lower := asciiLower(text)
	pos := 0
	for pos < len(text) {
		idx := strings.Index(lower[pos:], "url")
		if idx < 0 {
			break
		}
		start := pos + idx
		m, end, ok := parseCSSURL(text, start)
		if !ok {
			pos = start + 1
			continue
		}
		matches = append(matches, m)
		pos = end
	}
	return matches
}

// parseCSSURL parses url( ["']? data-ref ["']? ) at s[i:], where s[i:i+3]
// is "url" in any case.
func parseCSSURL(s string, i int) (Match, int, bool) {
	j := skipSpace(s, i+3)
	if j >= len(s) || s[j] != '(' {
		return Match{}, 0, false
	}
	j = skipSpace(s, j+1)
	if j < len(s) && (s[j] == '"' || s[j] == '\'') {
		j++
	}
	m, end, ok := parseDataRef(s, j, true)
	if !ok {
		return Match{}, 0, false
	}
	if end < len(s) && (s[end] == '"' || s[end] == '\'') {
		end++
	}
	end = skipSpace(s, end)
	if end >= len(s) || s[end] != ')' {
		return Match{}, 0, false
	}
	return m, end + 1, true
}

// asciiLower lowercases ASCII letters only, so byte offsets into the result
// stay valid for s.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
