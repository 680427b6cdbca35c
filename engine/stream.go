package engine

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
)

// Stream is a bounded channel of generation chunks between a producing
// engine and the consuming controller. The producer calls Send and finishes
// with Close or CloseWithError; the consumer calls Recv until it returns
// io.EOF or a terminal error. Close is idempotent.
type Stream struct {
	channel chan Chunk
	closed  atomic.Int32

	mu  sync.Mutex
	err error
}

// NewStream creates a Stream with the given buffer size.
func NewStream(bufferSize int) *Stream {
	return &Stream{
		channel: make(chan Chunk, bufferSize),
	}
}

// Send delivers a chunk to the consumer, blocking while the buffer is full.
// Returns ctx.Err when the producer's context ends, or ErrStreamClosed if
// the stream was already closed. Only the producer may call Send.
func (s *Stream) Send(ctx context.Context, chunk Chunk) error {
	if s.IsClosed() {
		return ErrStreamClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case s.channel <- chunk:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv returns the next chunk. Once the stream is closed and its buffer
// drained, Recv returns io.EOF after a clean close or the producer's error
// after CloseWithError. A cancelled ctx returns ctx.Err immediately.
func (s *Stream) Recv(ctx context.Context) (Chunk, error) {
	// Checked before the select so a cancelled consumer never races a
	// buffered chunk; cancellation always wins over pending data.
	if err := ctx.Err(); err != nil {
		return Chunk{}, err
	}

	select {
	case chunk, ok := <-s.channel:
		if !ok {
			return Chunk{}, s.terminalErr()
		}
		return chunk, nil
	case <-ctx.Done():
		return Chunk{}, ctx.Err()
	}
}

// Close marks the stream complete. Buffered chunks remain readable.
func (s *Stream) Close() {
	s.CloseWithError(nil)
}

// CloseWithError marks the stream failed; Recv reports err once drained.
// Subsequent closes are ignored.
func (s *Stream) CloseWithError(err error) {
	if s.closed.CompareAndSwap(0, 1) {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.channel)
	}
}

// IsClosed reports whether the producer has finished the stream.
func (s *Stream) IsClosed() bool {
	return s.closed.Load() == 1
}

func (s *Stream) terminalErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	return io.EOF
}
