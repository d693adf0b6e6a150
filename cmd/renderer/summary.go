package main

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"row-major/pathtrace/camera"
	"row-major/pathtrace/render"
	"row-major/pathtrace/rgbimage"
	"row-major/pathtrace/scene"

	"github.com/olekukonko/tablewriter"
)

// renderSummary tabulates what was rendered and how long it took.
func renderSummary(sc *scene.Scene, cam *camera.LookAtCamera, opts *render.Options, accum *rgbimage.Image, elapsed time.Duration) string {
	kinds := map[string]int{}
	for _, e := range sc.Elements {
		kinds[fmt.Sprintf("%T / %T", e.TheGeometry, e.TheMaterial)]++
	}
	kindNames := make([]string, 0, len(kinds))
	for k := range kinds {
		kindNames = append(kindNames, k)
	}
	sort.Strings(kindNames)

	pixels := accum.RowSize * accum.ColSize
	traced := opts.Workers * opts.SamplesPerWorker * pixels

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Section", "Item", "Value"})
	table.Append([]string{"Scene", "Elements", fmt.Sprintf("%d", len(sc.Elements))})
	for _, k := range kindNames {
		table.Append([]string{"", k, fmt.Sprintf("%d", kinds[k])})
	}
	table.Append([]string{"Camera", "Eye", fmt.Sprintf("%.3g", cam.Eye())})
	table.Append([]string{"", "Forward", fmt.Sprintf("%.3g", cam.Forward())})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Render", "Image", fmt.Sprintf("%dx%d", accum.ColSize, accum.RowSize)})
	table.Append([]string{"", "Workers", fmt.Sprintf("%d", opts.Workers)})
	table.Append([]string{"", "Samples per worker", fmt.Sprintf("%d", opts.SamplesPerWorker)})
	table.Append([]string{"", "Max depth", fmt.Sprintf("%d", opts.MaxDepth)})
	table.Append([]string{"", "Samples traced", fmt.Sprintf("%d", traced)})
	table.Append([]string{"", "Samples per pixel", fmt.Sprintf("%d", accum.TotalSamples()/pixels)})
	table.Append([]string{"", "Elapsed", elapsed.Round(time.Millisecond).String()})
	if secs := elapsed.Seconds(); secs > 0 {
		table.SetFooter([]string{"Throughput", " ", fmt.Sprintf("%.0f samples/s", float64(traced)/secs)})
	}

	table.Render()
	return buf.String()
}
