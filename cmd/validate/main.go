// Command validate checks the three input datasets before they are deployed
// to the service. It decodes each file the way the service does, checks
// coordinates and identifiers, builds every layer once, and verifies the
// layer weights stay within their documented bounds. Optionally the built
// layers are written to a JSON file for offline inspection.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -stations data/stations.geojson \
//	  -segments data/tmja.geojson \
//	  -congestion data/congestion.json \
//	  -out layers.json -generated-at 2025-01-01T00:00:00Z
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/couchcryptid/charging-need-service/internal/dataset"
	"github.com/couchcryptid/charging-need-service/internal/domain"
	"github.com/couchcryptid/charging-need-service/internal/scoring"
	"github.com/jonboulle/clockwork"
)

// Need weights are an affine map of need in [0,1].
const (
	needWeightMin = 0.35
	needWeightMax = 1.2
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type options struct {
	stationsPath   string
	segmentsPath   string
	congestionPath string
	outPath        string
	generatedAt    string
	radius         float64
	workers        int
}

func main() {
	var opts options
	flag.StringVar(&opts.stationsPath, "stations", "", "path to the stations GeoJSON file")
	flag.StringVar(&opts.segmentsPath, "segments", "", "path to the traffic segments GeoJSON file")
	flag.StringVar(&opts.congestionPath, "congestion", "", "path to the congestion tiles JSON file")
	flag.StringVar(&opts.outPath, "out", "", "optional path to write the built layers as JSON")
	flag.StringVar(&opts.generatedAt, "generated-at", "", "fixed RFC3339 layer timestamp for reproducible output")
	flag.Float64Var(&opts.radius, "radius", domain.DefaultRadiusMeters, "supply search radius in meters")
	flag.IntVar(&opts.workers, "workers", runtime.NumCPU(), "supply aggregation workers")
	flag.Parse()

	if opts.stationsPath == "" && opts.segmentsPath == "" && opts.congestionPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(opts))
}

func run(opts options) int {
	if opts.generatedAt != "" {
		at, err := time.Parse(time.RFC3339, opts.generatedAt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: invalid -generated-at: %v\n", err)
			return 1
		}
		domain.SetClock(clockwork.NewFakeClockAt(at))
		defer domain.SetClock(nil)
	}

	fmt.Println("=== Charging Need Dataset Validation ===")
	fmt.Println()

	// ── Decode ──
	decode := &phase{name: "Phase 1: Decode"}
	var ds domain.Datasets
	var reports []domain.DatasetReport

	var report domain.DatasetReport
	ds.Stations, report = decodeFile(decode, domain.DatasetStations, opts.stationsPath, dataset.DecodeStations)
	reports = append(reports, report)
	ds.Segments, report = decodeFile(decode, domain.DatasetSegments, opts.segmentsPath, dataset.DecodeSegments)
	reports = append(reports, report)
	ds.Congestion, report = decodeFile(decode, domain.DatasetCongestion, opts.congestionPath, dataset.DecodeCongestionTiles)
	reports = append(reports, report)

	params := domain.DefaultNeedParams()
	params.RadiusMeters = opts.radius
	params = params.WithDefaults()

	layers := buildLayers(ds, params, opts.workers)

	phases := []*phase{
		decode,
		validateCoordinates(ds),
		validateIdentifiers(ds),
		validateLayers(ds, layers),
	}

	// ── Report results ──
	fmt.Println()
	for _, r := range reports {
		fmt.Printf("  %-12s total=%-7d kept=%-7d dropped=%d\n", r.Dataset, r.Total, r.Kept, r.Dropped)
	}
	if _, removed := dataset.DedupeStations(ds.Stations); removed > 0 {
		fmt.Printf("  %d co-located duplicate stations would be removed by DEDUPE_STATIONS\n", removed)
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Layers: %d ev, %d traffic, %d congestion, %d need points (radius %.0fm)\n",
		len(layers.EV.Points), len(layers.Traffic.Points), len(layers.Congestion.Points), len(layers.Need.Points), params.RadiusMeters)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if opts.outPath != "" {
		if err := writeLayers(opts.outPath, layers); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: write layers: %v\n", err)
			return 1
		}
		fmt.Printf("\nWrote layers to %s\n", opts.outPath)
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func decodeFile[T any](p *phase, name, path string, decode func([]byte) ([]T, domain.DatasetReport, error)) ([]T, domain.DatasetReport) {
	report := domain.DatasetReport{Dataset: name}
	if path == "" {
		return []T{}, report
	}
	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("%s: %v", name, err)
		return []T{}, report
	}
	records, report, err := decode(data)
	if err != nil {
		p.errorf("%s: %v", name, err)
		return []T{}, domain.DatasetReport{Dataset: name}
	}
	if report.Kept == 0 {
		p.errorf("%s: no usable records out of %d", name, report.Total)
	}
	return records, report
}

type layerSet struct {
	EV         domain.HeatLayer `json:"ev"`
	Traffic    domain.HeatLayer `json:"traffic"`
	Congestion domain.HeatLayer `json:"congestion"`
	Need       domain.NeedLayer `json:"need"`
}

func buildLayers(ds domain.Datasets, params domain.NeedParams, workers int) layerSet {
	return layerSet{
		EV:         domain.NewHeatLayer(domain.LayerEV, scoring.StationHeatPoints(ds.Stations)),
		Traffic:    domain.NewHeatLayer(domain.LayerTraffic, scoring.TrafficHeatPoints(ds.Segments)),
		Congestion: domain.NewHeatLayer(domain.LayerCongestion, scoring.CongestionHeatPoints(ds.Congestion)),
		Need:       domain.NewNeedLayer(params, scoring.NewNeedScorer(params, workers).Score(ds.Segments, ds.Stations)),
	}
}

func writeLayers(path string, layers layerSet) error {
	data, err := json.MarshalIndent(layers, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ── Phase 2: Coordinates ──

func validCoordinate(lat, lng float64) bool {
	return !math.IsNaN(lat) && !math.IsNaN(lng) && lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func validateCoordinates(ds domain.Datasets) *phase {
	p := &phase{name: "Phase 2: Coordinates"}
	for _, st := range ds.Stations {
		if !validCoordinate(st.Lat, st.Lng) {
			p.errorf("station %q: coordinate (%v, %v) out of range", st.ID, st.Lat, st.Lng)
		}
	}
	for _, seg := range ds.Segments {
		if !validCoordinate(seg.Lat, seg.Lng) {
			p.errorf("segment %q: coordinate (%v, %v) out of range", seg.ID, seg.Lat, seg.Lng)
		}
	}
	for _, tile := range ds.Congestion {
		if !validCoordinate(tile.Lat, tile.Lng) {
			p.errorf("tile %q: coordinate (%v, %v) out of range", tile.ID, tile.Lat, tile.Lng)
		}
	}
	return p
}

// ── Phase 3: Identifiers ──

func validateIdentifiers(ds domain.Datasets) *phase {
	p := &phase{name: "Phase 3: Identifiers"}
	checkUnique(p, domain.DatasetStations, len(ds.Stations), func(i int) string { return ds.Stations[i].ID })
	checkUnique(p, domain.DatasetSegments, len(ds.Segments), func(i int) string { return ds.Segments[i].ID })
	checkUnique(p, domain.DatasetCongestion, len(ds.Congestion), func(i int) string { return ds.Congestion[i].ID })
	return p
}

func checkUnique(p *phase, name string, n int, id func(i int) string) {
	seen := make(map[string]int, n)
	for i := range n {
		key := id(i)
		if key == "" {
			p.errorf("%s record %d: empty id", name, i)
			continue
		}
		if first, ok := seen[key]; ok {
			p.errorf("%s records %d and %d share id %q", name, first, i, key)
			continue
		}
		seen[key] = i
	}
}

// ── Phase 4: Layer bounds ──

func validateLayers(ds domain.Datasets, layers layerSet) *phase {
	p := &phase{name: "Phase 4: Layer Bounds"}

	for _, layer := range []domain.HeatLayer{layers.EV, layers.Traffic, layers.Congestion} {
		for i, pt := range layer.Points {
			if math.IsNaN(pt.Weight) || math.IsInf(pt.Weight, 0) || pt.Weight < 0 {
				p.errorf("%s point %d: invalid weight %v", layer.Kind, i, pt.Weight)
			}
		}
	}

	usable := 0
	for _, seg := range ds.Segments {
		if seg.Usable() {
			usable++
		}
	}
	if len(layers.Need.Points) != usable {
		p.errorf("need layer has %d points, expected one per usable segment (%d)", len(layers.Need.Points), usable)
	}
	for _, pt := range layers.Need.Points {
		if pt.Need < 0 || pt.Need > 1 {
			p.errorf("need point %q: need %v outside [0,1]", pt.SegmentID, pt.Need)
		}
		if pt.Weight < needWeightMin || pt.Weight > needWeightMax {
			p.errorf("need point %q: weight %v outside [%v,%v]", pt.SegmentID, pt.Weight, needWeightMin, needWeightMax)
		}
	}
	return p
}
