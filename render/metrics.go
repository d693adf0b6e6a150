package render

import (
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	workerKey = tag.MustNewKey("worker")

	samplesMeasure        = stats.Int64("render/samples", "Primary ray samples traced", stats.UnitDimensionless)
	passesMeasure         = stats.Int64("render/passes", "Full-frame passes completed", stats.UnitDimensionless)
	workerFailuresMeasure = stats.Int64("render/worker_failures", "Render workers that failed", stats.UnitDimensionless)
)

var (
	SamplesView = &view.View{
		Name:        "render/samples",
		Description: "Total primary ray samples traced",
		Measure:     samplesMeasure,
		Aggregation: view.Sum(),
	}

	PassesView = &view.View{
		Name:        "render/passes",
		Description: "Counter of full-frame passes completed, by worker",
		TagKeys:     []tag.Key{workerKey},
		Measure:     passesMeasure,
		Aggregation: view.Count(),
	}

	WorkerFailuresView = &view.View{
		Name:        "render/worker_failures",
		Description: "Counter of render workers that panicked",
		Measure:     workerFailuresMeasure,
		Aggregation: view.Count(),
	}
)

// RegisterViews registers the render views with the opencensus view package.
func RegisterViews() error {
	return view.Register(SamplesView, PassesView, WorkerFailuresView)
}
