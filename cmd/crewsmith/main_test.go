package main

import (
	"context"
	"testing"
	"time"

	"github.com/crewsmith/crewsmith/internal/workflow"
)

func TestProgressSinkForwardsLines(t *testing.T) {
	progress := make(chan workflow.ProgressLine, 1)
	sink := progressSink(context.Background(), progress)
	sink(workflow.ProgressLine{Kind: workflow.LineHeader, Worker: "lead"})
	select {
	case line := <-progress:
		if line.Worker != "lead" {
			t.Fatalf("unexpected line: %+v", line)
		}
	default:
		t.Fatalf("line was not forwarded")
	}
}

func TestProgressSinkUnblocksOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Unbuffered channel with no reader: without the cancel path this
	// send would block forever.
	sink := progressSink(ctx, make(chan workflow.ProgressLine))

	done := make(chan struct{})
	go func() {
		sink(workflow.ProgressLine{Kind: workflow.LineHeader, Worker: "lead"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("sink blocked after context cancellation")
	}
}
