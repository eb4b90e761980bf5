package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const defaultReadSize = 4096

// Decoder turns an SSE byte stream into ordered text deltas. Frames may be
// split arbitrarily across reads; a carry-over buffer keeps the trailing
// partial line until the rest arrives.
type Decoder struct {
	r      io.Reader
	logger *zap.Logger
	buf    []byte
	carry  []byte
	text   strings.Builder
	done   bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger used for dropped frames.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Decoder) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithReadSize sets the size of each read from the underlying reader.
func WithReadSize(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.buf = make([]byte, n)
		}
	}
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{
		r:      r,
		logger: zap.NewNop(),
		buf:    make([]byte, defaultReadSize),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode reads the stream to its end, calling onDelta for every text delta in
// receipt order, and returns the concatenated text. It stops at end of data,
// at the done sentinel, when onDelta returns an error, or when ctx is done.
// The error sentinel yields ErrStreamFailed along with the text received so far.
func (d *Decoder) Decode(ctx context.Context, onDelta func(string) error) (string, error) {
	for !d.done {
		if err := ctx.Err(); err != nil {
			return d.text.String(), err
		}

		n, readErr := d.r.Read(d.buf)
		if n > 0 {
			if err := d.feed(d.buf[:n], onDelta); err != nil {
				return d.text.String(), err
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				// A final line without a trailing newline is still a frame.
				if len(d.carry) > 0 && !d.done {
					line := d.carry
					d.carry = nil
					if err := d.line(line, onDelta); err != nil {
						return d.text.String(), err
					}
				}
				return d.text.String(), nil
			}
			return d.text.String(), fmt.Errorf("read stream: %w", readErr)
		}
	}
	return d.text.String(), nil
}

// feed appends chunk to the carry buffer and processes every complete line.
func (d *Decoder) feed(chunk []byte, onDelta func(string) error) error {
	d.carry = append(d.carry, chunk...)
	for !d.done {
		idx := bytes.IndexByte(d.carry, '\n')
		if idx < 0 {
			return nil
		}
		line := d.carry[:idx]
		if err := d.line(line, onDelta); err != nil {
			return err
		}
		d.carry = d.carry[idx+1:]
	}
	return nil
}

func (d *Decoder) line(raw []byte, onDelta func(string) error) error {
	line := strings.TrimSuffix(string(raw), "\r")
	if !strings.HasPrefix(line, dataPrefix) {
		return nil
	}
	payload := strings.TrimSpace(line[len(dataPrefix):])
	if payload == "" {
		return nil
	}
	if payload == DoneSentinel {
		d.done = true
		return nil
	}

	var delta string
	if err := json.Unmarshal([]byte(payload), &delta); err != nil {
		d.logger.Debug("dropping undecodable frame", zap.String("payload", payload), zap.Error(err))
		return nil
	}
	if delta == ErrorSentinel {
		d.done = true
		return ErrStreamFailed
	}
	if delta == "" {
		return nil
	}

	d.text.WriteString(delta)
	if onDelta != nil {
		return onDelta(delta)
	}
	return nil
}

// Decode is a convenience wrapper around NewDecoder(r, opts...).Decode.
func Decode(ctx context.Context, r io.Reader, onDelta func(string) error, opts ...Option) (string, error) {
	return NewDecoder(r, opts...).Decode(ctx, onDelta)
}
