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
	"math/rand/v2"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultEncodeChunkSize is the number of input bytes encoded per step.
	DefaultEncodeChunkSize = 64 * 1024
	// DefaultEncodeStride is the number of encoder chunks between progress events.
	DefaultEncodeStride = 20
	// DefaultSampleChunkSize is the number of filler characters generated per step.
	DefaultSampleChunkSize = 512 * 1024
	// DefaultSampleStride is the number of sample chunks between progress events.
	DefaultSampleStride = 4
	// DefaultMaxSampleMB bounds generateSample requests.
	DefaultMaxSampleMB = 1024
)

type registeredRecognizer struct {
	recognizer Recognizer
	priority   float64
}

// Engine runs conversion requests. It holds no state between requests apart
// from its configuration and random source, and is not safe for concurrent
// use; the Dispatcher drives it from a single goroutine.
type Engine struct {
	recognizers     []registeredRecognizer
	contentSniffing bool
	encodeChunkSize int
	encodeStride    int
	sampleChunkSize int
	sampleStride    int
	maxSampleMB     int
	rand            *rand.Rand
	logger          zerolog.Logger
	now             func() time.Time
}

// New creates an Engine with the built-in recognizers and the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		encodeChunkSize: DefaultEncodeChunkSize,
		encodeStride:    DefaultEncodeStride,
		sampleChunkSize: DefaultSampleChunkSize,
		sampleStride:    DefaultSampleStride,
		maxSampleMB:     DefaultMaxSampleMB,
		logger:          zerolog.Nop(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rand == nil {
		seed := uint64(time.Now().UnixNano())
		e.rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	e.enableBuiltins()
	return e
}

// RegisterRecognizer adds a recognizer with the given priority.
// Lower priority values are tried first.
func (e *Engine) RegisterRecognizer(r Recognizer, priority float64) {
	e.recognizers = append(e.recognizers, registeredRecognizer{
		recognizer: r,
		priority:   priority,
	})
	sort.SliceStable(e.recognizers, func(i, j int) bool {
		return e.recognizers[i].priority < e.recognizers[j].priority
	})
}

// Recognizers returns the recognizers in the order they are applied.
func (e *Engine) Recognizers() []Recognizer {
	out := make([]Recognizer, len(e.recognizers))
	for i, rr := range e.recognizers {
		out[i] = rr.recognizer
	}
	return out
}

func (e *Engine) enableBuiltins() {
	e.RegisterRecognizer(dataURIRecognizer{}, 0)
	e.RegisterRecognizer(htmlImgRecognizer{}, 1)
	e.RegisterRecognizer(cssURLRecognizer{}, 2)
}

// Validate checks the configuration. The Dispatcher refuses to start an
// engine that fails validation.
func (e *Engine) Validate() error {
	var errs []error
	if e.encodeChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("encode chunk size must be positive, got %d", e.encodeChunkSize))
	}
	if e.sampleChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("sample chunk size must be positive, got %d", e.sampleChunkSize))
	}
	if e.maxSampleMB <= 0 {
		errs = append(errs, fmt.Errorf("max sample size must be positive, got %d", e.maxSampleMB))
	}
	if len(e.recognizers) == 0 {
		errs = append(errs, errors.New("no recognizers registered"))
	}
	if len(errs) > 0 {
		return &Error{Kind: KindNotReady, Op: "validate", Err: errors.Join(errs...)}
	}
	return nil
}

// Process runs req to completion. Progress messages go to emit as they are
// produced, followed by exactly one terminal message. The returned error is
// the failure reported in the terminal message, or nil on success.
func (e *Engine) Process(req Request, emit Emitter) (err error) {
	log := e.logger.With().
		Str("request_id", req.ID).
		Str("action", string(req.Action)).
		Logger()
	start := e.now()
	log.Debug().Msg("request received")

	// Set before the terminal message is handed over, so a panicking emitter
	// cannot cause a second one.
	terminated := false
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: KindInternal, Op: string(req.Action), Err: fmt.Errorf("%v", r)}
		}
		if err != nil {
			log.Error().Err(err).Str("kind", KindOf(err).String()).Msg("request failed")
			if !terminated {
				terminated = true
				emit(Message{Kind: KindError, RequestID: req.ID, ErrMessage: err.Error(), err: err})
			}
			return
		}
		log.Debug().Dur("elapsed", e.now().Sub(start)).Msg("request completed")
	}()

	var run func(*progressReporter) (Message, error)
	switch req.Action {
	case ActionExtract:
		run = func(p *progressReporter) (Message, error) { return e.runExtract(req, p) }
	case ActionGenerateSample:
		run = func(p *progressReporter) (Message, error) { return e.runSample(req, p) }
	case ActionEncode:
		run = func(p *progressReporter) (Message, error) { return e.runEncode(req, p) }
	default:
		return newError(KindUnrecognizedAction, "dispatch", "unknown action %q", req.Action)
	}

	msg, err := run(newProgressReporter(req.ID, emit))
	if err != nil {
		return err
	}
	msg.RequestID = req.ID
	terminated = true
	emit(msg)
	return nil
}

func (e *Engine) runExtract(req Request, p *progressReporter) (Message, error) {
	text := req.Text
	if text == "" && len(req.Bytes) > 0 {
		charset, _ := req.Options["charset"].(string)
		text = DecodeText(req.Bytes, charset)
	}
	results, metrics := e.extract(text, p)
	return Message{Kind: KindExtractResult, Results: results, Metrics: &metrics}, nil
}

func (e *Engine) runSample(req Request, p *progressReporter) (Message, error) {
	b64, metrics, err := e.generateSample(req.SizeMB, p)
	if err != nil {
		return Message{}, err
	}
	return Message{Kind: KindSampleResult, Base64: b64, Metrics: &metrics}, nil
}

func (e *Engine) runEncode(req Request, p *progressReporter) (Message, error) {
	if req.Bytes == nil && req.Text != "" {
		return Message{}, newError(KindMalformedPayload, string(ActionEncode), "encode expects a byte buffer, got text")
	}
	b64, metrics := e.encode(req.Bytes, p)
	return Message{Kind: KindEncodeResult, Base64: b64, Metrics: &metrics}, nil
}

func (e *Engine) metricsSince(start time.Time, size int64) Metrics {
	elapsed := e.now().Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	return Metrics{
		ElapsedMs: float64(elapsed) / float64(time.Millisecond),
		ByteSize:  size,
	}
}
