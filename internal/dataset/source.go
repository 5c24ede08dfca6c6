package dataset

import (
	"context"
	"log/slog"
	"os"

	"github.com/couchcryptid/charging-need-service/internal/domain"
)

// FileSource loads the three datasets from local JSON files. A file that is
// missing or unreadable yields an empty dataset and a warning; an empty path
// disables that dataset.
type FileSource struct {
	StationsPath   string
	SegmentsPath   string
	CongestionPath string
	// Dedupe drops co-located duplicate stations after decoding.
	Dedupe bool

	logger *slog.Logger
}

// NewFileSource creates a file-backed dataset source.
func NewFileSource(stationsPath, segmentsPath, congestionPath string, dedupe bool, logger *slog.Logger) *FileSource {
	return &FileSource{
		StationsPath:   stationsPath,
		SegmentsPath:   segmentsPath,
		CongestionPath: congestionPath,
		Dedupe:         dedupe,
		logger:         logger,
	}
}

// Load reads and decodes every configured dataset. It only fails when ctx is
// done.
func (s *FileSource) Load(ctx context.Context) (domain.Datasets, []domain.DatasetReport, error) {
	var (
		ds      domain.Datasets
		reports []domain.DatasetReport
		report  domain.DatasetReport
	)

	if err := ctx.Err(); err != nil {
		return ds, nil, err
	}
	ds.Stations, report = loadFile(s.logger, domain.DatasetStations, s.StationsPath, DecodeStations)
	if s.Dedupe {
		var removed int
		ds.Stations, removed = DedupeStations(ds.Stations)
		if removed > 0 {
			report.Kept -= removed
			report.Dropped += removed
			s.logger.Info("removed duplicate stations", "removed", removed)
		}
	}
	reports = append(reports, report)

	if err := ctx.Err(); err != nil {
		return ds, nil, err
	}
	ds.Segments, report = loadFile(s.logger, domain.DatasetSegments, s.SegmentsPath, DecodeSegments)
	reports = append(reports, report)

	if err := ctx.Err(); err != nil {
		return ds, nil, err
	}
	ds.Congestion, report = loadFile(s.logger, domain.DatasetCongestion, s.CongestionPath, DecodeCongestionTiles)
	reports = append(reports, report)

	return ds, reports, nil
}

func loadFile[T any](logger *slog.Logger, name, path string, decode func([]byte) ([]T, domain.DatasetReport, error)) ([]T, domain.DatasetReport) {
	empty := domain.DatasetReport{Dataset: name}
	if path == "" {
		logger.Debug("dataset disabled", "dataset", name)
		return []T{}, empty
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("dataset unavailable, using empty dataset", "dataset", name, "path", path, "error", err)
		return []T{}, empty
	}

	records, report, err := decode(data)
	if err != nil {
		logger.Warn("dataset undecodable, using empty dataset", "dataset", name, "path", path, "error", err)
		return []T{}, empty
	}

	logger.Info("dataset loaded", "dataset", name, "path", path, "kept", report.Kept, "dropped", report.Dropped)
	return records, report
}
