package feed

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/SahinShazi/HealthSync/internal/format"
)

// HistoryPoints is the length of every chart series: one point per hour.
const HistoryPoints = 24

// Point is one chart sample.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type span struct {
	lo, width float64
	decimals  bool
}

var historySpans = map[string]span{
	HeartRate:   {lo: 65, width: 20},
	BloodOxygen: {lo: 97, width: 3},
	Temperature: {lo: 36.4, width: 0.8, decimals: true},
	Steps:       {lo: 200, width: 500},
	Hydration:   {lo: 70, width: 30},
}

// History generates the trailing 24 hourly samples for a metric, oldest
// first, labelled with the hour's local time.
func History(metric string, now time.Time, rng *rand.Rand) ([]Point, error) {
	s, ok := historySpans[metric]
	if !ok {
		return nil, fmt.Errorf("feed: no history for metric %q", metric)
	}
	points := make([]Point, 0, HistoryPoints)
	for i := HistoryPoints - 1; i >= 0; i-- {
		at := now.Add(-time.Duration(i) * time.Hour)
		var v float64
		if s.decimals {
			v = math.Round((rng.Float64()*s.width+s.lo)*10) / 10
		} else {
			v = math.Floor(rng.Float64()*s.width) + s.lo
		}
		points = append(points, Point{Label: format.Time(at), Value: v})
	}
	return points, nil
}

// HasHistory reports whether History supports the metric.
func HasHistory(metric string) bool {
	_, ok := historySpans[metric]
	return ok
}

// SleepStage is one slice of the sleep doughnut chart.
type SleepStage struct {
	Label   string `json:"label"`
	Minutes int    `json:"minutes"`
	Color   string `json:"color"`
}

type SleepSummary struct {
	Stages  []SleepStage `json:"stages"`
	Total   int          `json:"total_minutes"`
	Quality int          `json:"quality"`
}

// SleepBreakdown is last night's sleep by stage.
func SleepBreakdown() SleepSummary {
	return SleepSummary{
		Stages: []SleepStage{
			{Label: "Deep Sleep", Minutes: 135, Color: "#00d4ff"},
			{Label: "Light Sleep", Minutes: 270, Color: "#7c3aed"},
			{Label: "REM Sleep", Minutes: 105, Color: "#f59e0b"},
		},
		Total:   510,
		Quality: 85,
	}
}
