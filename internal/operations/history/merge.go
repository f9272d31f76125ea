package history

import (
	"sort"

	"github.com/rs/zerolog/log"

	"CryptoBreakoutBot/internal/models"
)

// Merge overlays update onto base. Bars sharing a timestamp take the
// update row; the result is sorted ascending.
func Merge(base, update []models.Bar) []models.Bar {
	byTime := make(map[int64]models.Bar, len(base)+len(update))
	for _, b := range base {
		byTime[b.Timestamp.Unix()] = b
	}
	for _, b := range update {
		byTime[b.Timestamp.Unix()] = b
	}

	merged := make([]models.Bar, 0, len(byTime))
	for _, b := range byTime {
		merged = append(merged, b)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged
}

// MergeFiles merges Finam files left to right, later files winning
// timestamp collisions, and writes the result to outPath.
func MergeFiles(outPath string, paths ...string) error {
	var merged []models.Bar
	for _, p := range paths {
		bars, err := LoadFinamCSV(p)
		if err != nil {
			return err
		}
		log.Info().Str("file", p).Int("bars", len(bars)).Msg("loaded history file")
		merged = Merge(merged, bars)
	}

	log.Info().Str("out", outPath).Int("bars", len(merged)).Msg("writing merged history")
	return WriteFinamCSV(outPath, merged)
}
