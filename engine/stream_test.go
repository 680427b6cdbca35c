package engine_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/tailored-agentic-units/converse/engine"
)

func TestStream_SendRecv_Order(t *testing.T) {
	s := engine.NewStream(4)
	ctx := context.Background()

	deltas := []string{"Hi", "", " there"}
	for _, d := range deltas {
		if err := s.Send(ctx, engine.Chunk{Delta: d}); err != nil {
			t.Fatalf("Send(%q) failed: %v", d, err)
		}
	}
	s.Close()

	for i, want := range deltas {
		chunk, err := s.Recv(ctx)
		if err != nil {
			t.Fatalf("Recv %d failed: %v", i, err)
		}
		if chunk.Delta != want {
			t.Errorf("chunk %d: got %q, want %q", i, chunk.Delta, want)
		}
	}

	if _, err := s.Recv(ctx); err != io.EOF {
		t.Errorf("drained stream: got %v, want io.EOF", err)
	}
}

func TestStream_CloseWithError(t *testing.T) {
	s := engine.NewStream(4)
	ctx := context.Background()

	if err := s.Send(ctx, engine.Chunk{Delta: "partial"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	streamErr := errors.New("engine exploded")
	s.CloseWithError(streamErr)

	// Buffered chunks drain before the terminal error surfaces.
	chunk, err := s.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv failed: %v", err)
	}
	if chunk.Delta != "partial" {
		t.Errorf("got %q, want %q", chunk.Delta, "partial")
	}

	if _, err := s.Recv(ctx); !errors.Is(err, streamErr) {
		t.Errorf("got %v, want %v", err, streamErr)
	}
}

func TestStream_Close_Idempotent(t *testing.T) {
	s := engine.NewStream(1)

	s.Close()
	s.Close()
	s.CloseWithError(errors.New("late"))

	// The first close wins.
	if _, err := s.Recv(context.Background()); err != io.EOF {
		t.Errorf("got %v, want io.EOF", err)
	}
	if !s.IsClosed() {
		t.Error("IsClosed should report true after Close")
	}
}

func TestStream_Send_AfterClose(t *testing.T) {
	s := engine.NewStream(1)
	s.Close()

	if err := s.Send(context.Background(), engine.Chunk{Delta: "x"}); !errors.Is(err, engine.ErrStreamClosed) {
		t.Errorf("got %v, want ErrStreamClosed", err)
	}
}

func TestStream_Recv_ContextCancel(t *testing.T) {
	s := engine.NewStream(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Recv(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestStream_Recv_CancelBeatsBufferedChunk(t *testing.T) {
	s := engine.NewStream(4)

	if err := s.Send(context.Background(), engine.Chunk{Delta: "late"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled consumer must not pick up chunks that arrived before
	// the cancellation was observed.
	if _, err := s.Recv(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled despite buffered chunk", err)
	}
}

func TestStream_Send_BlocksUntilRecv(t *testing.T) {
	s := engine.NewStream(1)
	ctx := context.Background()

	if err := s.Send(ctx, engine.Chunk{Delta: "a"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Send(ctx, engine.Chunk{Delta: "b"})
	}()

	select {
	case err := <-done:
		t.Fatalf("Send on full buffer returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	if _, err := s.Recv(ctx); err != nil {
		t.Fatalf("Recv failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("blocked Send failed after drain: %v", err)
	}
}
