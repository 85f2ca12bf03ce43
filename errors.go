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
	"errors"
	"fmt"
)

// ErrorKind classifies engine and dispatcher failures. Only the message text
// crosses into an error Message; the kind stays available to Go callers.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindUnrecognizedAction
	KindMalformedPayload
	KindNotReady
	KindBusy
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnrecognizedAction:
		return "unrecognized action"
	case KindMalformedPayload:
		return "malformed payload"
	case KindNotReady:
		return "not ready"
	case KindBusy:
		return "busy"
	}
	return "internal failure"
}

// Error is returned by every failing operation.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so the sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	// ErrBusy is returned by Submit while another request is running.
	ErrBusy = &Error{Kind: KindBusy}
	// ErrNotReady is returned by Submit before Start or after a failed Start.
	ErrNotReady = &Error{Kind: KindNotReady}
)

func newError(kind ErrorKind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) ErrorKind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var target *Error
	return errors.As(err, &target) && target.Kind == kind
}
