// Package feed simulates the live vitals shown on the patient dashboard: a
// bounded random walk over a fixed set of metrics, chart history and a
// runner that publishes snapshots.
package feed

import (
	"math"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/SahinShazi/HealthSync/internal/format"
)

const (
	HeartRate    = "heart_rate"
	BloodOxygen  = "blood_oxygen"
	SleepQuality = "sleep_quality"
	Temperature  = "temperature"
	Steps        = "steps"
	Hydration    = "hydration"
)

// Names lists the metrics in dashboard order.
var Names = []string{HeartRate, BloodOxygen, SleepQuality, Temperature, Steps, Hydration}

const (
	TrendStable     = "stable"
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendImproving  = "improving"
)

// stepsCutoffHour is the local hour from which no more steps are counted.
const stepsCutoffHour = 22

type Metric struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Unit    string  `json:"unit"`
	Current float64 `json:"current"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Target  float64 `json:"target,omitempty"`
	Trend   string  `json:"trend"`
}

// Display renders the current value as the dashboard shows it.
func (m Metric) Display() string {
	switch m.Name {
	case Temperature:
		return strconv.FormatFloat(m.Current, 'f', 1, 64)
	case Steps:
		return format.Grouped(int64(m.Current))
	}
	return strconv.FormatInt(int64(math.Round(m.Current)), 10)
}

func (m *Metric) clamp() {
	m.Current = math.Max(m.Min, math.Min(m.Max, m.Current))
}

func seed() map[string]*Metric {
	return map[string]*Metric{
		HeartRate:    {Name: HeartRate, Label: "Heart Rate", Unit: "BPM", Current: 72, Min: 60, Max: 100, Trend: TrendStable},
		BloodOxygen:  {Name: BloodOxygen, Label: "Blood Oxygen", Unit: "%", Current: 98, Min: 95, Max: 100, Trend: TrendStable},
		SleepQuality: {Name: SleepQuality, Label: "Sleep Quality", Unit: "%", Current: 85, Min: 0, Max: 100, Trend: TrendImproving},
		Temperature:  {Name: Temperature, Label: "Body Temperature", Unit: "°C", Current: 36.8, Min: 36.0, Max: 37.5, Trend: TrendStable},
		Steps:        {Name: Steps, Label: "Steps Today", Unit: "steps", Current: 8432, Min: 0, Max: 100000, Target: 10000, Trend: TrendIncreasing},
		Hydration:    {Name: Hydration, Label: "Hydration", Unit: "%", Current: 75, Min: 0, Max: 100, Target: 100, Trend: TrendDecreasing},
	}
}

// Snapshot is a copy of the record at one instant.
type Snapshot struct {
	PatientID string    `json:"patient_id"`
	Metrics   []Metric  `json:"metrics"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s Snapshot) Metric(name string) (Metric, bool) {
	for _, m := range s.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Value returns the current value of a metric, or 0 if it is absent.
func (s Snapshot) Value(name string) float64 {
	m, _ := s.Metric(name)
	return m.Current
}

// Record is the live metrics record. Only Tick mutates it; every reader
// gets a Snapshot.
type Record struct {
	mu        sync.RWMutex
	patientID string
	metrics   map[string]*Metric
	updatedAt time.Time
}

func NewRecord(patientID string, now time.Time) *Record {
	return &Record{patientID: patientID, metrics: seed(), updatedAt: now}
}

func (r *Record) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Record) snapshotLocked() Snapshot {
	out := Snapshot{PatientID: r.patientID, Metrics: make([]Metric, 0, len(Names)), UpdatedAt: r.updatedAt}
	for _, name := range Names {
		out.Metrics = append(out.Metrics, *r.metrics[name])
	}
	return out
}

// Tick applies one step of the random walk and returns the new snapshot.
// Every value stays within its metric's [Min, Max].
func (r *Record) Tick(rng *rand.Rand, now time.Time) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	step := func(name string, delta float64) {
		m := r.metrics[name]
		before := m.Current
		m.Current += delta
		m.clamp()
		m.Trend = trend(m.Current - before)
	}

	step(HeartRate, float64(rng.IntN(6)-3))
	step(BloodOxygen, float64(rng.IntN(3)-1))

	temp := r.metrics[Temperature]
	before := temp.Current
	temp.Current += (rng.Float64() - 0.5) * 0.2
	temp.clamp()
	temp.Current = math.Round(temp.Current*10) / 10
	temp.Trend = trend(temp.Current - before)

	if now.Hour() < stepsCutoffHour {
		step(Steps, float64(rng.IntN(100)+50))
	} else {
		r.metrics[Steps].Trend = TrendStable
	}

	if rng.Float64() < 0.3 {
		step(Hydration, float64(rng.IntN(10)+5))
	} else {
		step(Hydration, -float64(rng.IntN(3)+1))
	}

	r.updatedAt = now
	return r.snapshotLocked()
}

func trend(delta float64) string {
	switch {
	case delta > 1e-9:
		return TrendIncreasing
	case delta < -1e-9:
		return TrendDecreasing
	}
	return TrendStable
}
