// Package middleware implements stock layers for the croft dispatch core.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/crofthq/croft"
)

// RequestIDHeader is the header the request id is read from and echoed to.
const RequestIDHeader = "X-Request-Id"

// RequestID carries the request's id through extension data.
type RequestID string

// WithRequestID assigns each request an id, taken from the inbound
// RequestIDHeader or freshly generated, stores it in the request's extension
// data and echoes it on the response.
func WithRequestID() croft.Layer {
	return func(next croft.Handler) croft.Handler {
		return croft.HandlerFunc(func(ctx context.Context, req *croft.Request, args *croft.Args) (croft.Response, error) {
			id := req.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}

			req.Extensions.Set(RequestID(id))

			resp, err := next.Serve(ctx, req, args)
			if err != nil {
				return resp, err
			}

			resp.Header.Set(RequestIDHeader, id)

			return resp, nil
		})
	}
}

// RequestIDFrom returns the id assigned to the request, if any.
func RequestIDFrom(req *croft.Request) (RequestID, bool) {
	return croft.ExtensionFrom[RequestID](req.Extensions)
}

// WithAccessLog logs one line per dispatched request with method, path,
// status and duration. Because errors convert to responses before they travel
// upward, the layer always observes a response.
func WithAccessLog(logs *zap.Logger) croft.Layer {
	return func(next croft.Handler) croft.Handler {
		return croft.HandlerFunc(func(ctx context.Context, req *croft.Request, args *croft.Args) (croft.Response, error) {
			start := time.Now()

			resp, err := next.Serve(ctx, req, args)

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", resp.StatusCode),
				zap.Duration("duration", time.Since(start)),
			}
			if id, ok := RequestIDFrom(req); ok {
				fields = append(fields, zap.String("request_id", string(id)))
			}

			logs.Info("request", fields...)

			return resp, err
		})
	}
}

// WithRecover converts handler panics into 500 responses. Assertion
// violations (composition bugs such as double-inserting a singleton
// extension) keep propagating; they signal a bug, not a request failure.
func WithRecover(logs *zap.Logger) croft.Layer {
	return func(next croft.Handler) croft.Handler {
		return croft.HandlerFunc(func(ctx context.Context, req *croft.Request, args *croft.Args) (resp croft.Response, err error) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}

				if croft.IsAssertionViolation(v) {
					panic(v)
				}

				logs.Error("recovered from handler panic", zap.Any("panic", v))
				err = croft.NewError(croft.CodeInternalServerError, errors.Newf("panic: %v", v))
			}()

			return next.Serve(ctx, req, args)
		})
	}
}

// WithTracing starts a span around the wrapped handler and records the
// response status on it.
func WithTracing(provider trace.TracerProvider, service string) croft.Layer {
	tracer := provider.Tracer(service)

	return func(next croft.Handler) croft.Handler {
		return croft.HandlerFunc(func(ctx context.Context, req *croft.Request, args *croft.Args) (croft.Response, error) {
			ctx, span := tracer.Start(ctx, req.Method+" "+req.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", req.Method),
					attribute.String("url.path", req.URL.Path),
				),
			)
			defer span.End()

			resp, err := next.Serve(ctx, req, args)

			span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
			if resp.StatusCode >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
			}

			return resp, err
		})
	}
}
