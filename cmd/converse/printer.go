package main

import (
	"context"
	"fmt"
	"io"

	"github.com/tailored-agentic-units/converse/controller"
	"github.com/tailored-agentic-units/converse/observability"
)

// chunkPrinter streams generation deltas to the terminal as they arrive.
// All other event types are ignored.
type chunkPrinter struct {
	out io.Writer
}

func (p *chunkPrinter) OnEvent(ctx context.Context, event observability.Event) {
	if event.Type != controller.EventChunk {
		return
	}
	delta, ok := event.Data["delta"].(string)
	if !ok {
		return
	}
	fmt.Fprint(p.out, delta)
}
