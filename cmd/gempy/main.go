package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/CGR-Aachen/gempy/pkg/config"
	"github.com/CGR-Aachen/gempy/pkg/interpolator"
	"github.com/CGR-Aachen/gempy/pkg/model"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "", "Path to YAML configuration file (optional)")
	resolution := flag.Int("resolution", 16, "Grid resolution per axis for the demo model")
	numWorkers := flag.Int("workers", runtime.NumCPU(), "Number of goroutines for field evaluation")
	flag.Parse()

	if *resolution < 2 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.Evaluation.NumWorkers = *numWorkers

	fmt.Println("================================")
	fmt.Println("POTENTIAL-FIELD GEOLOGICAL MODEL RECONSTRUCTION")
	fmt.Println("Universal cokriging of surface points and orientations")
	fmt.Println("================================")

	geo := demoModel(*resolution)

	it, err := interpolator.New(cfg, geo)
	if err != nil {
		log.Fatalf("Model validation failed: %v", err)
	}
	it.SetProgressCallback(func(completed, total int, message string) {
		fmt.Printf("Series %d/%d done\n", completed, total)
	})

	fmt.Printf("Solving %d series over %d grid points...\n",
		len(geo.Series), geo.NumGridPoints())
	startTime := time.Now()
	sol, err := it.Compute()
	if err != nil {
		log.Fatalf("Interpolation failed: %v", err)
	}
	elapsed := time.Since(startTime)

	fmt.Printf("\nInterpolation completed in %.2f seconds\n", elapsed.Seconds())
	for i := range geo.Series {
		fmt.Printf("Series %q: %d weights, surface field values %v\n",
			geo.Series[i].Name, len(sol.Weights[i]), sol.SurfaceFieldValues[i])
	}

	block := sol.FinalBlock()
	counts := map[int]int{}
	for _, v := range block {
		counts[int(v+0.5)]++
	}
	fmt.Println("\nUnit occupancy of the final block model:")
	for id, n := range counts {
		fmt.Printf("- unit %d: %d grid cells\n", id, n)
	}

	fmt.Printf("\nUsed %d workers for chunked evaluation\n", cfg.Evaluation.NumWorkers)
}

// demoModel builds a two-series model in rescaled coordinates: a planar
// fault near x = 0.5 truncating two horizontal layers above a basement.
func demoModel(res int) *model.GeoModel {
	grid := make([]float64, 0, res*res*res*3)
	step := 1.0 / float64(res-1)
	for i := 0; i < res; i++ {
		for j := 0; j < res; j++ {
			for k := 0; k < res; k++ {
				grid = append(grid, float64(i)*step, float64(j)*step, float64(k)*step)
			}
		}
	}

	geo := &model.GeoModel{Grid: grid}

	// Series 0: the fault plane, sampled along strike and depth.
	fault := model.Series{
		Name:             "Main Fault",
		DriftDegree:      1,
		IsFault:          true,
		UnitIDs:          []float64{1, 1},
		PointsPerSurface: []int{4},
		NumOrientations:  1,
	}
	geo.SurfacePoints = append(geo.SurfacePoints,
		model.SurfacePoint{X: 0.5, Y: 0.2, Z: 0.2, Surface: 0, Series: 0},
		model.SurfacePoint{X: 0.5, Y: 0.8, Z: 0.2, Surface: 0, Series: 0},
		model.SurfacePoint{X: 0.5, Y: 0.2, Z: 0.8, Surface: 0, Series: 0},
		model.SurfacePoint{X: 0.5, Y: 0.8, Z: 0.8, Surface: 0, Series: 0},
	)
	geo.Orientations = append(geo.Orientations,
		model.Orientation{X: 0.5, Y: 0.5, Z: 0.5, Dip: 90, Azimuth: 90, Polarity: 1, Series: 0},
	)

	// Series 1: two horizontal layers over basement.
	layers := model.Series{
		Name:             "Strata",
		DriftDegree:      1,
		UnitIDs:          []float64{2, 3, 4},
		PointsPerSurface: []int{3, 3},
		NumOrientations:  2,
	}
	geo.SurfacePoints = append(geo.SurfacePoints,
		model.SurfacePoint{X: 0.2, Y: 0.3, Z: 0.7, Surface: 0, Series: 1},
		model.SurfacePoint{X: 0.5, Y: 0.7, Z: 0.7, Surface: 0, Series: 1},
		model.SurfacePoint{X: 0.8, Y: 0.5, Z: 0.7, Surface: 0, Series: 1},
		model.SurfacePoint{X: 0.2, Y: 0.6, Z: 0.4, Surface: 1, Series: 1},
		model.SurfacePoint{X: 0.5, Y: 0.3, Z: 0.4, Surface: 1, Series: 1},
		model.SurfacePoint{X: 0.8, Y: 0.7, Z: 0.4, Surface: 1, Series: 1},
	)
	geo.Orientations = append(geo.Orientations,
		model.Orientation{X: 0.3, Y: 0.5, Z: 0.75, Dip: 0, Azimuth: 0, Polarity: 1, Series: 1},
		model.Orientation{X: 0.7, Y: 0.5, Z: 0.45, Dip: 0, Azimuth: 0, Polarity: 1, Series: 1},
	)

	geo.Series = []model.Series{fault, layers}
	geo.FaultRelation = [][]bool{
		{false, true},
		{false, false},
	}
	return geo
}
