package kriging

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/CGR-Aachen/gempy/internal/chunk"
)

// EvaluateField computes the scalar potential field at every row of points
// by superposing the gradient, interface, universal-drift and fault-drift
// contributions weighted by the dual-kriging solution.
//
// Points are processed in contiguous chunks sized so that chunk length
// times system size stays under maxChunkElements, and chunks are evaluated
// by up to numWorkers goroutines. Each chunk writes a disjoint slice of the
// result, so the output is identical to a single unchunked evaluation
// regardless of execution order.
func EvaluateField(ctx *SeriesContext, weights []float64, points *mat.Dense, maxChunkElements, numWorkers int) ([]float64, error) {
	size, err := ctx.SystemSize()
	if err != nil {
		return nil, err
	}
	if len(weights) != size {
		return nil, fmt.Errorf("weight vector has %d entries, system size is %d", len(weights), size)
	}

	n, _ := points.Dims()
	out := make([]float64, n)
	ranges := chunk.Ranges(n, size, maxChunkElements)

	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > len(ranges) {
		numWorkers = len(ranges)
	}

	if numWorkers <= 1 {
		for _, rg := range ranges {
			evaluateChunk(ctx, weights, points, rg, out)
		}
		return out, nil
	}

	work := make(chan chunk.Range, len(ranges))
	for _, rg := range ranges {
		work <- rg
	}
	close(work)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rg := range work {
				evaluateChunk(ctx, weights, points, rg, out)
			}
		}()
	}
	wg.Wait()

	return out, nil
}

// evaluateChunk fills out[rg.Start:rg.End] with the field values of the
// corresponding evaluation points. The point index doubles as the column
// index into the fault-drift rows, which cover the full evaluation set.
func evaluateChunk(ctx *SeriesContext, weights []float64, points *mat.Dense, rg chunk.Range, out []float64) {
	m := ctx.NumOrientations()
	nG := ctx.NumGradientRows()
	nI := ctx.NumInterfaceRows()
	nU, _ := ctx.NumDriftRows()
	nF := ctx.NumFaultRows()
	gr := ctx.Kernel.GradientRescale
	ir := ctx.Kernel.InterfaceRescale

	for k := rg.Start; k < rg.End; k++ {
		p := points.RawRowView(k)
		var z float64

		// Gradient contribution: directional first derivative between
		// each orientation and the evaluation point.
		for bi := 0; bi < nG; bi++ {
			di, i := bi/m, bi%m
			dp := ctx.Dips.RawRowView(i)
			d := dist3(dp, p)
			hu := dp[di] - p[di]
			z += weights[bi] * gr * -hu * ctx.Kernel.FirstDerivativeFactor(d)
		}

		// Interface contribution: rest-minus-reference covariance to
		// the evaluation point.
		for j := 0; j < nI; j++ {
			dRest := dist3(ctx.Rest.RawRowView(j), p)
			dRef := dist3(ctx.Ref.RawRowView(j), p)
			z -= weights[nG+j] * ir * (ctx.Kernel.Covariance(dRest) - ctx.Kernel.Covariance(dRef))
		}

		// Universal-drift contribution: polynomial terms up to the
		// series' drift degree. The three linear terms carry a unit
		// auxiliary factor, the higher terms the gradient rescale.
		if nU > 0 {
			poly := [9]float64{
				p[0], p[1], p[2],
				p[0] * p[0], p[1] * p[1], p[2] * p[2],
				p[0] * p[1], p[0] * p[2], p[1] * p[2],
			}
			aux := [9]float64{1, 1, 1, gr, gr, gr, gr, gr, gr}
			for t := 0; t < nU; t++ {
				z += weights[nG+nI+t] * gr * aux[t] * poly[t]
			}
		}

		// Fault-drift contribution: the raw fault block values at the
		// evaluation point.
		for f := 0; f < nF; f++ {
			z += weights[nG+nI+nU+f] * ctx.FaultDrift.At(f, k)
		}

		out[k] = z
	}
}

// SurfaceFieldValues extracts the field value segmenting each surface of a
// series: the value at the surface's first rest point, read from the rest
// tail of the evaluation set by fixed offsets.
func SurfaceFieldValues(z []float64, nGrid, restStart int, restOffsets []int) []float64 {
	vals := make([]float64, len(restOffsets))
	for s, off := range restOffsets {
		vals[s] = z[nGrid+restStart+off]
	}
	return vals
}

func dist3(a, b []float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return math.Sqrt(math.Max(dx*dx+dy*dy+dz*dz, 1e-12))
}
