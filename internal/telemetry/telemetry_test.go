package telemetry

import (
	"context"
	"errors"
	"testing"
)

func TestSpanHelpersDoNotPanic(t *testing.T) {
	ctx := context.Background()

	span := StartSessionLoop(ctx, 7)
	EndSpan(span, nil)

	span = StartAcceptLoop(ctx, "127.0.0.1:4890")
	EndSpan(span, errors.New("accept failed"))
}

func TestCountersDoNotPanic(t *testing.T) {
	ctx := context.Background()
	RecordBytesRead(ctx, 128)
	RecordBytesRead(ctx, 0)
	RecordBytesWritten(ctx, 64)
	RecordMessageFramed(ctx)
}
