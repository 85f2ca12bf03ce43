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
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// magicPrefixes maps the base64 text of well-known image signatures to their
// MIME types. Order matters: the first matching prefix wins.
var magicPrefixes = []struct {
	prefix string
	mime   string
}{
	{"/9j/", "image/jpeg"},
	{"iVBORw", "image/png"},
	{"R0lGOD", "image/gif"},
	{"UklGR", "image/webp"},
	{"PHN2Zz", "image/svg+xml"},
	{"Qk02", "image/bmp"},
	{"AAABAA", "image/x-icon"},
}

const defaultImageMIME = "image/png"

// sniffHeadLen is the number of base64 characters decoded for content
// sniffing. It is a multiple of 4 so the head decodes on its own.
const sniffHeadLen = 4096

// Extract finds base64 image payloads in text. It never fails: finding
// nothing yields an empty slice.
func (e *Engine) Extract(text string) []ExtractedImage {
	results, _ := e.extract(text, newProgressReporter("", func(Message) {}))
	return results
}

func (e *Engine) extract(text string, p *progressReporter) ([]ExtractedImage, Metrics) {
	start := e.now()
	results := []ExtractedImage{}

	n := len(e.recognizers)
	for i, rr := range e.recognizers {
		name := rr.recognizer.Name()
		p.report(10+i*(70/n), fmt.Sprintf("matching %s pattern", name))

		for _, m := range rr.recognizer.FindAll(text) {
			results = append(results, ExtractedImage{
				Base64:   stripWhitespace(m.Payload),
				MIMEType: "image/" + m.Subtype,
				Source:   name,
			})
		}
	}

	if len(results) == 0 {
		p.report(80, "trying whole-content parse")
		if img, ok := e.wholeContent(text); ok {
			results = append(results, img)
		}
	}

	p.report(100, "extraction complete")
	return results, e.metricsSince(start, int64(len(text)))
}

// wholeContent treats the entire input as one bare base64 payload.
func (e *Engine) wholeContent(text string) (ExtractedImage, bool) {
	cleaned := stripWhitespace(text)
	if len(cleaned) <= minPayloadLen || !isBase64(cleaned) {
		return ExtractedImage{}, false
	}
	return ExtractedImage{
		Base64:   cleaned,
		MIMEType: e.sniffMIME(cleaned),
		Source:   SourceWholeContent,
	}, true
}

func (e *Engine) sniffMIME(b64 string) string {
	if mime, ok := mimeFromPrefix(b64); ok {
		return mime
	}
	if e.contentSniffing {
		if mime, ok := sniffContent(b64); ok {
			return mime
		}
	}
	return defaultImageMIME
}

func mimeFromPrefix(b64 string) (string, bool) {
	for _, mp := range magicPrefixes {
		if strings.HasPrefix(b64, mp.prefix) {
			return mp.mime, true
		}
	}
	return "", false
}

// sniffContent decodes the head of b64 and detects its type from the bytes.
// Only image types are accepted.
func sniffContent(b64 string) (string, bool) {
	head := b64
	if len(head) > sniffHeadLen {
		head = head[:sniffHeadLen]
	} else {
		head = head[:len(head)/4*4]
	}
	data, err := base64.StdEncoding.DecodeString(head)
	if err != nil || len(data) == 0 {
		return "", false
	}
	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return m.String(), true
		}
	}
	return "", false
}
