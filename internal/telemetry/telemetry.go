// Package telemetry wires session and framing lifecycle events into
// OpenTelemetry spans and counters.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/oba-ldap/x690"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	bytesReadCounter      metric.Int64Counter
	bytesWrittenCounter   metric.Int64Counter
	messagesFramedCounter metric.Int64Counter
)

func init() {
	bytesReadCounter, _ = meter.Int64Counter("x690.session.bytes_read",
		metric.WithDescription("bytes read off session streams"), metric.WithUnit("By"))
	bytesWrittenCounter, _ = meter.Int64Counter("x690.session.bytes_written",
		metric.WithDescription("bytes written to session streams"), metric.WithUnit("By"))
	messagesFramedCounter, _ = meter.Int64Counter("x690.framing.messages_framed",
		metric.WithDescription("complete BER messages assembled by a transceiver"))
}

// StartSessionLoop begins a span covering one Session's entire receive
// loop, from first wait_data_available to the loop's exit.
func StartSessionLoop(ctx context.Context, sessionID int) trace.Span {
	_, span := tracer.Start(ctx, "Session.loop", trace.WithAttributes(
		attribute.Int("session.id", sessionID),
	))
	return span
}

// StartAcceptLoop begins a span covering one server Endpoint's accept
// loop for as long as it runs.
func StartAcceptLoop(ctx context.Context, addr string) trace.Span {
	_, span := tracer.Start(ctx, "Endpoint.accept_loop", trace.WithAttributes(
		attribute.String("endpoint.addr", addr),
	))
	return span
}

// EndSpan records err on span, if any, before ending it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// RecordBytesRead increments the bytes-read counter by n.
func RecordBytesRead(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	bytesReadCounter.Add(ctx, int64(n))
}

// RecordBytesWritten increments the bytes-written counter by n.
func RecordBytesWritten(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	bytesWrittenCounter.Add(ctx, int64(n))
}

// RecordMessageFramed increments the messages-framed counter by one.
func RecordMessageFramed(ctx context.Context) {
	messagesFramedCounter.Add(ctx, 1)
}
