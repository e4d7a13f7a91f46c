package main

import (
	"context"

	"github.com/jonathan/profile-architect/internal/document"
	"github.com/jonathan/profile-architect/internal/generation"
	"github.com/jonathan/profile-architect/internal/observability"
	"github.com/spf13/cobra"
)

// commandContext returns the command's context, falling back to Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// watchStages prints stage transitions until the returned stop function is called.
// Stop waits for the printer to drain so output is not interleaved.
func watchStages(orch *generation.Orchestrator, printer *observability.Printer) func() {
	events, unsubscribe := orch.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			printer.PrintStageEvent(ev)
		}
	}()
	return func() {
		unsubscribe()
		<-done
	}
}

// newOrchestrator connects a model client to a fresh store using the loaded settings.
func newOrchestrator(ctx context.Context) (*generation.Orchestrator, func(), error) {
	client, err := newLLMClient(ctx, &settings)
	if err != nil {
		return nil, nil, err
	}
	return generation.NewOrchestrator(client, document.NewStore(), generation.WithTimeout(settings.Timeout())), func() { _ = client.Close() }, nil
}
