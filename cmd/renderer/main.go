// renderer path-traces a scene and writes the averaged image.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path"
	"runtime"
	rpprof "runtime/pprof"
	"strings"
	"syscall"
	"time"

	"row-major/pathtrace/camera"
	"row-major/pathtrace/healthz"
	"row-major/pathtrace/render"
	"row-major/pathtrace/rgbimage"
	"row-major/pathtrace/scenepack"
	"row-major/pathtrace/sink"

	"cloud.google.com/go/storage"
	"contrib.go.opencensus.io/exporter/stackdriver"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/golang/glog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/term"
	googleopt "google.golang.org/api/option"
)

var (
	sceneName = flag.String("scene", "two-spheres", "Built-in scene name ("+strings.Join(scenepack.BuiltinNames(), ", ")+") or path to a JSON scene file")
	output    = flag.String("output", "output.ppm", "Output image; .ppm or .png, local path or gs://bucket/object")

	imageCols = flag.Int("image-cols", 0, "Override the scene's image width")
	imageRows = flag.Int("image-rows", 0, "Override the scene's image height")

	workers  = flag.Int("workers", render.DefaultWorkers, "Number of render workers")
	samples  = flag.Int("samples", render.DefaultSamplesPerWorker, "Full-frame passes rendered by each worker")
	maxDepth = flag.Int("max-depth", render.DefaultMaxDepth, "Maximum number of bounces to consider")
	seed     = flag.Int64("seed", 0, "Random seed; 0 picks one from the clock")

	checkpoint = flag.String("checkpoint", "", "Sample accumulation file to write after rendering")
	resume     = flag.Bool("resume", false, "Should we re-open the checkpoint to add more samples?")

	debugListen          = flag.String("debug-listen", "", "Server address:port for debug endpoint.  Empty disables it.")
	monitoring           = flag.Bool("monitoring", false, "Enable monitoring?")
	monitoringProject    = flag.String("monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	monitoringTraceRatio = flag.Float64("monitoring-trace-ratio", 1.0, "What ratio of traces should be exported?")

	cpuprofile = flag.String("cpu-profile", "", "write cpu profile to `file`")
	memprofile = flag.String("mem-profile", "", "write memory profile to `file`")
)

func main() {
	flag.Parse()

	glog.CopyStandardLogTo("INFO")

	os.Exit(run(do))
}

// run sets up profiling and monitoring around body and returns the process
// exit code.  Everything it starts is torn down by its defers, including when
// body fails.
func run(body func(ctx context.Context) error) int {
	defer glog.Flush()

	glog.Infof("flags:")
	glog.Infof("scene: %q", *sceneName)
	glog.Infof("output: %q", *output)
	glog.Infof("workers: %v", *workers)
	glog.Infof("samples: %v", *samples)
	glog.Infof("max-depth: %v", *maxDepth)
	glog.Infof("checkpoint: %q", *checkpoint)
	glog.Infof("resume: %v", *resume)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Errorf("Could not create CPU profile: %v", err)
			return 1
		}
		defer f.Close()
		if err := rpprof.StartCPUProfile(f); err != nil {
			glog.Errorf("Could not start CPU profile: %v", err)
			return 1
		}
		defer rpprof.StopCPUProfile()
	}

	if *monitoring {
		traceOpts := []cloudtrace.Option{}
		if *monitoringProject != "" {
			traceOpts = append(traceOpts, cloudtrace.WithProjectID(*monitoringProject))
		}

		_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(*monitoringTraceRatio)))
		if err != nil {
			glog.Errorf("Failed to install Cloud Trace OpenTelemetry trace pipeline: %v", err)
			return 1
		}
		defer traceShutdown()

		// The render views are registered in do(), before any samples are
		// recorded.
		metricsExporter, err := stackdriver.NewExporter(stackdriver.Options{
			ProjectID:         *monitoringProject,
			MetricPrefix:      "pathtrace",
			ReportingInterval: 60 * time.Second,
		})
		if err != nil {
			glog.Errorf("Failed to create Cloud Monitoring exporter: %v", err)
			return 1
		}
		if err := metricsExporter.StartMetricsExporter(); err != nil {
			glog.Errorf("Failed to start Cloud Monitoring exporter: %v", err)
			return 1
		}
		defer metricsExporter.Flush()
		defer metricsExporter.StopMetricsExporter()
	}

	if err := body(ctx); err != nil {
		glog.Errorf("Error: %+v", err)
		return 1
	}

	if *memprofile != "" {
		if err := writeHeapProfile(*memprofile); err != nil {
			glog.Errorf("Could not write memory profile: %v", err)
			return 1
		}
	}

	return 0
}

func writeHeapProfile(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("while creating file: %w", err)
	}
	defer f.Close()

	runtime.GC()
	if err := rpprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("while writing profile: %w", err)
	}
	return f.Close()
}

func do(ctx context.Context) error {
	pack, err := scenepack.LoadAny(*sceneName)
	if err != nil {
		return fmt.Errorf("while loading scene %q: %w", *sceneName, err)
	}
	if *imageCols != 0 {
		pack.Camera.ImageCols = *imageCols
	}
	if *imageRows != 0 {
		pack.Camera.ImageRows = *imageRows
	}

	cam, err := camera.New(pack.Camera)
	if err != nil {
		return fmt.Errorf("while building camera: %w", err)
	}

	options := &render.Options{
		Workers:          *workers,
		SamplesPerWorker: *samples,
		MaxDepth:         *maxDepth,
		Seed:             *seed,
	}
	if err := options.Validate(); err != nil {
		return err
	}

	if err := render.RegisterViews(); err != nil {
		return fmt.Errorf("while registering metric views: %w", err)
	}

	out, err := newSink(ctx)
	if err != nil {
		return err
	}

	rows, cols := cam.ImageSize()
	accum, err := loadAccumulator(ctx, out, rows, cols)
	if err != nil {
		return err
	}

	health := healthz.New()
	if *debugListen != "" {
		startDebugServer(health)
	}

	progress := newProgressReporter(health)
	start := time.Now()
	if err := render.Render(ctx, pack.Scene, cam, accum, options, progress.report); err != nil {
		return fmt.Errorf("while rendering: %w", err)
	}
	progress.finish()
	glog.Infof("Render summary:\n%s", renderSummary(pack.Scene, cam, options, accum, time.Since(start)))

	if *checkpoint != "" {
		if err := writeTo(ctx, out, *checkpoint, "application/octet-stream", func(w io.Writer) error {
			return rgbimage.WriteImage(accum, w)
		}); err != nil {
			return fmt.Errorf("while writing checkpoint: %w", err)
		}
	}

	encode, contentType, err := encoderFor(*output)
	if err != nil {
		return err
	}
	if err := writeTo(ctx, out, *output, contentType, func(w io.Writer) error {
		return encode(accum, w)
	}); err != nil {
		return fmt.Errorf("while writing output image: %w", err)
	}

	glog.Infof("Wrote %s (%d samples per pixel)", *output, accum.TotalSamples()/(rows*cols))
	return nil
}

func newSink(ctx context.Context) (*sink.Sink, error) {
	if !sink.IsGCS(*output) && !sink.IsGCS(*checkpoint) {
		return sink.New(nil), nil
	}

	gcs, err := storage.NewClient(ctx, googleopt.WithGRPCConnectionPool(1))
	if err != nil {
		return nil, fmt.Errorf("while creating GCS client: %w", err)
	}
	return sink.New(gcs), nil
}

// loadAccumulator returns the image to render into: the checkpoint when
// resuming, or a fresh buffer.
func loadAccumulator(ctx context.Context, out *sink.Sink, rows, cols int) (*rgbimage.Image, error) {
	if !*resume {
		if *checkpoint != "" {
			// Check that the checkpoint doesn't exist, to avoid blowing away
			// hours of render time.
			exists, err := out.Exists(ctx, *checkpoint)
			if err != nil {
				return nil, fmt.Errorf("while checking for existing checkpoint: %w", err)
			}
			if exists {
				return nil, fmt.Errorf("resumption not requested, but checkpoint %q exists", *checkpoint)
			}
		}
		return rgbimage.New(rows, cols), nil
	}

	if *checkpoint == "" {
		return nil, fmt.Errorf("resumption requested, but no checkpoint given")
	}

	r, err := out.Open(ctx, *checkpoint)
	if err != nil {
		return nil, fmt.Errorf("resumption requested, but encountered error opening checkpoint: %w", err)
	}
	defer r.Close()

	accum, err := rgbimage.ReadImage(r)
	if err != nil {
		return nil, fmt.Errorf("resumption requested, but encountered error loading checkpoint: %w", err)
	}

	if accum.RowSize != rows {
		return nil, fmt.Errorf("resumption requested, but the checkpoint doesn't have the right number of rows (got %d, want %d)", accum.RowSize, rows)
	}
	if accum.ColSize != cols {
		return nil, fmt.Errorf("resumption requested, but the checkpoint doesn't have the right number of columns (got %d, want %d)", accum.ColSize, cols)
	}

	glog.Infof("Resuming from %d existing samples", accum.TotalSamples())
	return accum, nil
}

func encoderFor(name string) (func(*rgbimage.Image, io.Writer) error, string, error) {
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".ppm":
		return rgbimage.WritePPM, "image/x-portable-pixmap", nil
	case ".png":
		return rgbimage.WritePNG, "image/png", nil
	default:
		return nil, "", fmt.Errorf("unsupported output extension %q (want .ppm or .png)", ext)
	}
}

func writeTo(ctx context.Context, out *sink.Sink, name, contentType string, write func(io.Writer) error) error {
	w, err := out.Create(ctx, name, contentType)
	if err != nil {
		return err
	}

	if err := write(w); err != nil {
		w.Close()
		return err
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("while closing %q: %w", name, err)
	}
	return nil
}

func startDebugServer(health *healthz.Handler) {
	debugServeMux := http.NewServeMux()
	health.Register(debugServeMux)
	debugServeMux.HandleFunc("/debug/pprof/", pprof.Index)
	debugServeMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugServeMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugServeMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugServeMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	debugServer := &http.Server{
		Addr:    *debugListen,
		Handler: debugServeMux,

		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := debugServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Fatalf("Debug server died: %v", err)
		}
	}()
}

// progressReporter draws a progress line when stderr is a terminal, and
// otherwise logs every tenth of the render.
type progressReporter struct {
	health      *healthz.Handler
	interactive bool
	lastDecile  int
}

func newProgressReporter(health *healthz.Handler) *progressReporter {
	return &progressReporter{
		health:      health,
		interactive: term.IsTerminal(int(os.Stderr.Fd())),
		lastDecile:  -1,
	}
}

func (p *progressReporter) report(cur, tot int) {
	p.health.SetProgress(cur, tot)
	if tot == 0 {
		return
	}

	if p.interactive {
		fmt.Fprintf(os.Stderr, "\r%d/%d %d%%", cur, tot, 100*cur/tot)
		return
	}

	if decile := 10 * cur / tot; decile != p.lastDecile {
		p.lastDecile = decile
		glog.Infof("Progress: %d/%d samples (%d%%)", cur, tot, 100*cur/tot)
	}
}

func (p *progressReporter) finish() {
	if p.interactive {
		fmt.Fprintf(os.Stderr, "\n")
	}
}
