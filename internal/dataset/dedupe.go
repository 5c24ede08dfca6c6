package dataset

import (
	"fmt"

	"github.com/couchcryptid/charging-need-service/internal/domain"
)

// DedupeStations drops stations whose coordinates round to the same six
// decimals (about 0.1 m) as an earlier station. Order is preserved and the
// number of removed stations is returned.
func DedupeStations(stations []domain.StationRecord) ([]domain.StationRecord, int) {
	seen := make(map[string]struct{}, len(stations))
	out := make([]domain.StationRecord, 0, len(stations))
	for _, st := range stations {
		key := coordinateKey(st.Lat, st.Lng)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, st)
	}
	return out, len(stations) - len(out)
}

func coordinateKey(lat, lng float64) string {
	return fmt.Sprintf("%.6f|%.6f", lat, lng)
}
