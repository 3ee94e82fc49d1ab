package croft

import (
	"context"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Frame is one unit of a streaming body: either a chunk of data or, at the end
// of the stream, a map of trailer fields.
type Frame struct {
	data     []byte
	trailers http.Header
}

// DataFrame wraps a byte chunk in a frame.
func DataFrame(data []byte) Frame {
	return Frame{data: data}
}

// TrailersFrame wraps trailer fields in a frame.
func TrailersFrame(trailers http.Header) Frame {
	return Frame{trailers: trailers}
}

// IsData reports whether the frame carries a data chunk.
func (f Frame) IsData() bool { return f.trailers == nil }

// Data returns the frame's data chunk, nil for a trailers frame.
func (f Frame) Data() []byte { return f.data }

// Trailers returns the frame's trailer fields, nil for a data frame.
func (f Frame) Trailers() http.Header { return f.trailers }

// Body is the canonical streaming byte-chunk type both requests and responses
// carry. Next returns the next frame, or io.EOF when the stream ends. Any error
// from an underlying concrete body surfaces here as a boxed stream-read
// failure; it never crashes the request's goroutine.
//
// A body is owned by a single reader and is not safe for concurrent use.
type Body interface {
	Next(ctx context.Context) (Frame, error)
}

// FrameSource is the contract foreign streaming sources implement to be adapted
// into the canonical [Body]. Data and trailers are mutually exclusive per call;
// returning both nil signals the end of the stream.
type FrameSource interface {
	NextFrame(ctx context.Context) (data []byte, trailers http.Header, err error)
}

// EmptyBody returns a body with no frames.
func EmptyBody() Body { return emptyBody{} }

type emptyBody struct{}

func (emptyBody) Next(context.Context) (Frame, error) { return Frame{}, io.EOF }

// BytesBody returns a body yielding the given bytes as a single data frame.
func BytesBody(data []byte) Body {
	return &bytesBody{data: data}
}

type bytesBody struct {
	data []byte
	done bool
}

func (b *bytesBody) Next(context.Context) (Frame, error) {
	if b.done || len(b.data) == 0 {
		return Frame{}, io.EOF
	}

	b.done = true

	return DataFrame(b.data), nil
}

// readerBodyChunkSize bounds the data frames produced by [ReaderBody].
const readerBodyChunkSize = 32 * 1024

// ReaderBody adapts an io.Reader into a body. If the reader is also an
// io.Closer it is closed when the stream ends or fails.
func ReaderBody(r io.Reader) Body {
	return &readerBody{r: r}
}

type readerBody struct {
	r    io.Reader
	done bool
}

func (b *readerBody) Next(ctx context.Context) (Frame, error) {
	if b.done {
		return Frame{}, io.EOF
	}

	if err := ctx.Err(); err != nil {
		b.close()
		return Frame{}, err
	}

	buf := make([]byte, readerBodyChunkSize)

	n, err := b.r.Read(buf)
	if n > 0 {
		return DataFrame(buf[:n]), nil
	}

	b.close()

	if err == nil || errors.Is(err, io.EOF) {
		return Frame{}, io.EOF
	}

	return Frame{}, errors.Wrap(err, "croft: body read")
}

func (b *readerBody) close() {
	b.done = true
	if closer, ok := b.r.(io.Closer); ok {
		_ = closer.Close()
	}
}

// AdaptBody wraps a foreign frame source so its chunks are copied into the
// canonical byte-chunk type and its errors are boxed into the canonical error
// type. This is the single point where heterogeneous body types become
// homogeneous for storage in requests and responses.
func AdaptBody(src FrameSource) Body {
	return &adaptedBody{src: src}
}

type adaptedBody struct {
	src  FrameSource
	done bool
}

func (b *adaptedBody) Next(ctx context.Context) (Frame, error) {
	if b.done {
		return Frame{}, io.EOF
	}

	data, trailers, err := b.src.NextFrame(ctx)
	if err != nil {
		b.done = true
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}

		return Frame{}, errors.Wrap(err, "croft: body stream")
	}

	if trailers != nil {
		return TrailersFrame(trailers), nil
	}

	if data == nil {
		b.done = true
		return Frame{}, io.EOF
	}

	chunk := make([]byte, len(data))
	copy(chunk, data)

	return DataFrame(chunk), nil
}

// ReadAllBody drains the body and returns its concatenated data along with any
// trailer fields it carried.
func ReadAllBody(ctx context.Context, b Body) ([]byte, http.Header, error) {
	if b == nil {
		return nil, nil, nil
	}

	var (
		data     []byte
		trailers http.Header
	)

	for {
		frame, err := b.Next(ctx)
		if errors.Is(err, io.EOF) {
			return data, trailers, nil
		}
		if err != nil {
			return data, trailers, err
		}

		if frame.IsData() {
			data = append(data, frame.Data()...)
			continue
		}

		if trailers == nil {
			trailers = make(http.Header)
		}
		for key, vals := range frame.Trailers() {
			trailers[key] = append(trailers[key], vals...)
		}
	}
}

// DrainBody consumes and discards the remaining frames.
func DrainBody(ctx context.Context, b Body) error {
	if b == nil {
		return nil
	}

	for {
		_, err := b.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
