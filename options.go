package b64img

import (
	"math/rand/v2"

	"github.com/rs/zerolog"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for request lifecycle events
// (default: zerolog.Nop()).
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRandSource sets the random source for sample filler. Pass a seeded
// source to make generated samples reproducible.
func WithRandSource(src rand.Source) Option {
	return func(e *Engine) {
		e.rand = rand.New(src)
	}
}

// WithSeed is shorthand for WithRandSource(rand.NewPCG(seed, seed)).
func WithSeed(seed uint64) Option {
	return WithRandSource(rand.NewPCG(seed, seed))
}

// WithContentSniffing makes whole-content extraction decode the head of the
// payload and sniff its type when no magic prefix matches, instead of
// assuming image/png.
func WithContentSniffing(enabled bool) Option {
	return func(e *Engine) {
		e.contentSniffing = enabled
	}
}

// WithEncodeChunking sets the encoder chunk size in bytes and how many chunks
// pass between progress events.
func WithEncodeChunking(chunkSize, stride int) Option {
	return func(e *Engine) {
		e.encodeChunkSize = chunkSize
		e.encodeStride = stride
	}
}

// WithSampleChunking sets the sample generator chunk size in characters and
// how many chunks pass between progress events.
func WithSampleChunking(chunkSize, stride int) Option {
	return func(e *Engine) {
		e.sampleChunkSize = chunkSize
		e.sampleStride = stride
	}
}

// WithMaxSampleMB caps the size accepted by generateSample.
func WithMaxSampleMB(n int) Option {
	return func(e *Engine) {
		e.maxSampleMB = n
	}
}

// WithRecognizer adds a custom recognizer with the given priority. Lower
// priority values are tried first; built-in recognizers use 0, 1 and 2.
func WithRecognizer(r Recognizer, priority float64) Option {
	return func(e *Engine) {
		e.RegisterRecognizer(r, priority)
	}
}
