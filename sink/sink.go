// Package sink opens render outputs and checkpoints, either on the local disk
// or as GCS objects named gs://bucket/object.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const gcsScheme = "gs://"

// ErrNotExist is returned by Open when the named file or object is missing.
var ErrNotExist = errors.New("does not exist")

// IsGCS reports whether name refers to a GCS object.
func IsGCS(name string) bool {
	return strings.HasPrefix(name, gcsScheme)
}

// ParseGCS splits gs://bucket/object into its bucket and object.
func ParseGCS(name string) (bucket, object string, err error) {
	if !IsGCS(name) {
		return "", "", fmt.Errorf("%q is not a gs:// path", name)
	}
	rest := strings.TrimPrefix(name, gcsScheme)
	slash := strings.IndexByte(rest, '/')
	if slash <= 0 || slash == len(rest)-1 {
		return "", "", fmt.Errorf("%q must have the form gs://bucket/object", name)
	}
	return rest[:slash], rest[slash+1:], nil
}

// Sink resolves names to readers and writers.  GCS is nil when only local
// files are used.
type Sink struct {
	GCS *storage.Client
}

func New(gcs *storage.Client) *Sink {
	return &Sink{GCS: gcs}
}

// Exists reports whether name can be opened for reading.
func (s *Sink) Exists(ctx context.Context, name string) (bool, error) {
	r, err := s.Open(ctx, name)
	if errors.Is(err, ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	r.Close()
	return true, nil
}

// Open opens name for reading.
func (s *Sink) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	tracer := otel.Tracer("row-major/pathtrace/sink")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Sink.Open")
	defer span.End()

	span.SetAttributes(attribute.String("name", name))

	if !IsGCS(name) {
		f, err := os.Open(name)
		if errors.Is(err, os.ErrNotExist) {
			span.SetStatus(codes.Ok, "")
			return nil, fmt.Errorf("file %q: %w", name, ErrNotExist)
		}
		if err != nil {
			err := fmt.Errorf("while opening file: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		span.SetStatus(codes.Ok, "")
		return f, nil
	}

	obj, err := s.object(name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			span.SetStatus(codes.Ok, "")
			return nil, fmt.Errorf("object %q: %w", name, ErrNotExist)
		}

		err := fmt.Errorf("while opening reader for object: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return r, nil
}

// Create opens name for writing, truncating anything already there.  For GCS
// the object is only committed when the writer is closed without error.
func (s *Sink) Create(ctx context.Context, name, contentType string) (io.WriteCloser, error) {
	tracer := otel.Tracer("row-major/pathtrace/sink")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Sink.Create")
	defer span.End()

	span.SetAttributes(attribute.String("name", name))

	if !IsGCS(name) {
		f, err := os.Create(name)
		if err != nil {
			err := fmt.Errorf("while creating file: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		span.SetStatus(codes.Ok, "")
		return f, nil
	}

	obj, err := s.object(name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	span.SetStatus(codes.Ok, "")
	return w, nil
}

func (s *Sink) object(name string) (*storage.ObjectHandle, error) {
	bucket, object, err := ParseGCS(name)
	if err != nil {
		return nil, err
	}
	if s.GCS == nil {
		return nil, fmt.Errorf("no GCS client configured for %q", name)
	}
	return s.GCS.Bucket(bucket).Object(object), nil
}
