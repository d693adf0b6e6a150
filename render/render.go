// Package render drives the parallel sample accumulation loop.
//
// Every worker renders whole frames into a private image; the only
// synchronization is the join at the end, after which the worker images are
// summed into the caller's image.
package render

import (
	"context"
	"fmt"
	"math/rand"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"row-major/pathtrace/camera"
	"row-major/pathtrace/rgbimage"
	"row-major/pathtrace/scene"

	"github.com/golang/glog"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWorkers          = 10
	DefaultSamplesPerWorker = 10
	DefaultMaxDepth         = 20
)

type Options struct {
	// Workers is the number of independent workers.
	Workers int

	// SamplesPerWorker is the number of full-frame passes each worker
	// renders.  Every pass traces one jittered primary ray per pixel.
	SamplesPerWorker int

	// MaxDepth bounds the number of bounces followed per path.
	MaxDepth int

	// Seed seeds the per-worker random sources.  Zero picks a seed from the
	// clock.
	Seed int64
}

func DefaultOptions() *Options {
	return &Options{
		Workers:          DefaultWorkers,
		SamplesPerWorker: DefaultSamplesPerWorker,
		MaxDepth:         DefaultMaxDepth,
	}
}

// Validate rejects options that would render nothing or divide by zero when
// averaging.
func (o *Options) Validate() error {
	if o.Workers <= 0 {
		return newConfigError("workers", "must be positive (got %d)", o.Workers)
	}
	if o.SamplesPerWorker <= 0 {
		return newConfigError("samples per worker", "must be positive (got %d)", o.SamplesPerWorker)
	}
	if o.MaxDepth <= 0 {
		return newConfigError("max depth", "must be positive (got %d)", o.MaxDepth)
	}
	return nil
}

// ProgressFunction receives the number of primary samples traced so far and
// the number the render will trace in total.  Calls are serialized.
type ProgressFunction func(cur, tot int)

type worker struct {
	index int
	accum *rgbimage.Image
	rng   *rand.Rand

	scene  *scene.Scene
	camera camera.Camera

	passes   int
	maxDepth int

	progressFunction func(int)
}

// render traces w.passes full frames into w.accum.
func (w *worker) render(ctx context.Context) error {
	ctx, err := tag.New(ctx, tag.Insert(workerKey, strconv.Itoa(w.index)))
	if err != nil {
		return fmt.Errorf("while tagging worker context: %w", err)
	}

	for pass := 0; pass < w.passes; pass++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		for r := 0; r < w.accum.RowSize; r++ {
			for c := 0; c < w.accum.ColSize; c++ {
				q := w.camera.ImageToRay(r, c, w.rng)
				w.accum.RecordSample(r, c, w.scene.SampleRay(q, w.rng, w.maxDepth))
			}

			stats.Record(ctx, samplesMeasure.M(int64(w.accum.ColSize)))
			w.progressFunction(w.accum.ColSize)
		}

		stats.Record(ctx, passesMeasure.M(1))
		glog.V(2).Infof("Worker %d finished pass %d/%d", w.index, pass+1, w.passes)
	}

	return nil
}

// Render traces opts.Workers*opts.SamplesPerWorker more samples for every
// pixel of target and adds them to it.  target may already hold samples from
// an earlier render of the same scene; they are kept.
//
// If any worker fails, Render returns its error and target is left
// unmodified.
func Render(ctx context.Context, sc *scene.Scene, cam camera.Camera, target *rgbimage.Image, opts *Options, progressFunction ProgressFunction) error {
	tracer := otel.Tracer("row-major/pathtrace/render")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Render")
	defer span.End()

	if err := validateRender(sc, cam, target, opts); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	// Count the samples already in the target, so that a resumed render
	// doesn't just repeat its earlier RNG choices.
	existingSamples := target.TotalSamples()

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	seed += int64(existingSamples)

	totalSamples := opts.Workers * opts.SamplesPerWorker * target.RowSize * target.ColSize

	span.SetAttributes(
		attribute.Int64("workers", int64(opts.Workers)),
		attribute.Int64("samples_per_worker", int64(opts.SamplesPerWorker)),
		attribute.Int64("max_depth", int64(opts.MaxDepth)),
		attribute.Int64("rows", int64(target.RowSize)),
		attribute.Int64("cols", int64(target.ColSize)),
		attribute.Int64("existing_samples", int64(existingSamples)),
	)

	glog.Infof("Rendering %dx%d with %d workers x %d samples, max depth %d", target.ColSize, target.RowSize, opts.Workers, opts.SamplesPerWorker, opts.MaxDepth)

	curProgress := 0
	progressMutex := sync.Mutex{}
	reportProgress := func(subProgress int) {
		if progressFunction == nil {
			return
		}
		progressMutex.Lock()
		defer progressMutex.Unlock()
		curProgress += subProgress
		progressFunction(curProgress, totalSamples)
	}

	workers := make([]*worker, opts.Workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := range workers {
		w := &worker{
			index:            i,
			accum:            rgbimage.New(target.RowSize, target.ColSize),
			rng:              rand.New(rand.NewSource(seed + int64(i))),
			scene:            sc,
			camera:           cam,
			passes:           opts.SamplesPerWorker,
			maxDepth:         opts.MaxDepth,
			progressFunction: reportProgress,
		}
		workers[i] = w

		g.Go(func() (err error) {
			wctx, wspan := tracer.Start(gctx, "Render worker")
			defer wspan.End()
			wspan.SetAttributes(attribute.Int64("worker", int64(w.index)))

			defer func() {
				if v := recover(); v != nil {
					err = newWorkerError(w.index, v, debug.Stack())
					stats.Record(wctx, workerFailuresMeasure.M(1))
				}
				if err != nil {
					wspan.RecordError(err)
					wspan.SetStatus(codes.Error, err.Error())
				}
			}()

			if err := w.render(wctx); err != nil {
				return fmt.Errorf("worker %d: %w", w.index, err)
			}
			glog.V(1).Infof("Worker %d done", w.index)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	// Merge in worker order so a fixed seed reproduces the same sums.
	for _, w := range workers {
		if err := target.Add(w.accum); err != nil {
			return fmt.Errorf("while merging worker %d: %w", w.index, err)
		}
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func validateRender(sc *scene.Scene, cam camera.Camera, target *rgbimage.Image, opts *Options) error {
	if opts == nil {
		return newConfigError("options", "must not be nil")
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if sc == nil {
		return newConfigError("scene", "must not be nil")
	}
	if cam == nil {
		return newConfigError("camera", "must not be nil")
	}
	if target == nil {
		return newConfigError("image", "must not be nil")
	}
	if target.RowSize <= 0 || target.ColSize <= 0 {
		return newConfigError("image", "dimensions must be positive (got %dx%d)", target.ColSize, target.RowSize)
	}
	if sized, ok := cam.(interface{ ImageSize() (int, int) }); ok {
		rows, cols := sized.ImageSize()
		if rows != target.RowSize || cols != target.ColSize {
			return newConfigError("image", "size %dx%d doesn't match the camera's %dx%d", target.ColSize, target.RowSize, cols, rows)
		}
	}
	return nil
}
