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
	"encoding/json"
	"errors"
)

// Action names an operation the engine can run.
type Action string

const (
	ActionExtract        Action = "extract"
	ActionGenerateSample Action = "generateSample"
	ActionEncode         Action = "encode"
)

// Request is a single unit of work sent to the engine. It must not be modified
// after it has been submitted.
type Request struct {
	// ID correlates every message produced for this request.
	// The dispatcher fills it in when empty.
	ID     string `json:"id,omitempty"`
	Action Action `json:"action"`

	// Text is the input for ActionExtract.
	Text string `json:"text,omitempty"`
	// Bytes is the input for ActionEncode. For ActionExtract it is used when
	// Text is empty and is decoded to UTF-8 first.
	Bytes []byte `json:"bytes,omitempty"`
	// SizeMB is the target size for ActionGenerateSample.
	SizeMB int `json:"sizeMB,omitempty"`

	Options map[string]any `json:"options,omitempty"`
}

// SourcePattern names the recognizer that produced an ExtractedImage.
type SourcePattern string

const (
	SourceDataURI      SourcePattern = "Data URI"
	SourceHTMLImg      SourcePattern = "HTML img"
	SourceCSSURL       SourcePattern = "CSS url"
	SourceWholeContent SourcePattern = "whole-content"
)

// ExtractedImage is one base64 image payload found in text.
type ExtractedImage struct {
	Base64   string        `json:"base64"`
	MIMEType string        `json:"mimeType"`
	Source   SourcePattern `json:"source"`
}

// DataURL renders the image as a data: URL.
func (e ExtractedImage) DataURL() string {
	return DataURL(e.MIMEType, e.Base64)
}

// Metrics describes the cost of one operation.
type Metrics struct {
	ElapsedMs float64 `json:"elapsedMs"`
	ByteSize  int64   `json:"byteSize"`
}

// MessageKind discriminates the Message union.
type MessageKind string

const (
	KindProgress      MessageKind = "progress"
	KindExtractResult MessageKind = "extractResult"
	KindSampleResult  MessageKind = "sampleResult"
	KindEncodeResult  MessageKind = "encodeResult"
	KindError         MessageKind = "error"
)

// Message is everything that travels from the engine back to the caller.
// Only the fields relevant to Kind are set.
type Message struct {
	Kind      MessageKind `json:"kind"`
	RequestID string      `json:"requestId,omitempty"`

	Percent int    `json:"percent"`
	Label   string `json:"label,omitempty"`

	Results []ExtractedImage `json:"results,omitempty"`
	Base64  string           `json:"base64,omitempty"`
	Metrics *Metrics         `json:"metrics,omitempty"`

	ErrMessage string `json:"message,omitempty"`

	// err keeps the typed failure for in-process callers.
	err error
}

// Err returns the failure carried by an error message, or nil for any other
// kind. Messages built in-process keep their *Error; others get a
// KindInternal error with the message text.
func (m Message) Err() error {
	if m.Kind != KindError {
		return nil
	}
	if m.err != nil {
		return m.err
	}
	return &Error{Kind: KindInternal, Err: errors.New(m.ErrMessage)}
}

// Terminal reports whether m ends its request.
func (m Message) Terminal() bool {
	return m.Kind != KindProgress
}

// Emitter receives messages produced while a request runs.
type Emitter func(Message)

// messageFields has Message's fields without its MarshalJSON method.
type messageFields Message

// MarshalJSON writes only the fields that belong to m.Kind. Result payloads
// are always present for their kind, even when empty.
func (m Message) MarshalJSON() ([]byte, error) {
	switch m.Kind {
	case KindProgress:
		return json.Marshal(struct {
			Kind      MessageKind `json:"kind"`
			RequestID string      `json:"requestId,omitempty"`
			Percent   int         `json:"percent"`
			Label     string      `json:"label"`
		}{m.Kind, m.RequestID, m.Percent, m.Label})
	case KindExtractResult:
		results := m.Results
		if results == nil {
			results = []ExtractedImage{}
		}
		return json.Marshal(struct {
			Kind      MessageKind      `json:"kind"`
			RequestID string           `json:"requestId,omitempty"`
			Results   []ExtractedImage `json:"results"`
			Metrics   *Metrics         `json:"metrics,omitempty"`
		}{m.Kind, m.RequestID, results, m.Metrics})
	case KindSampleResult, KindEncodeResult:
		return json.Marshal(struct {
			Kind      MessageKind `json:"kind"`
			RequestID string      `json:"requestId,omitempty"`
			Base64    string      `json:"base64"`
			Metrics   *Metrics    `json:"metrics,omitempty"`
		}{m.Kind, m.RequestID, m.Base64, m.Metrics})
	case KindError:
		return json.Marshal(struct {
			Kind      MessageKind `json:"kind"`
			RequestID string      `json:"requestId,omitempty"`
			Message   string      `json:"message"`
		}{m.Kind, m.RequestID, m.ErrMessage})
	}
	return json.Marshal(messageFields(m))
}
