// Package report renders the downloadable plain-text health report.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/feed"
)

const ContentType = "text/plain; charset=utf-8"

var recommendations = []string{
	"Maintain current exercise routine",
	"Increase water intake",
	"Consider earlier bedtime for better sleep quality",
	"Continue monitoring heart rate variability",
}

// Generate renders the report for patient from the snapshot.
func Generate(p internal.Patient, s feed.Snapshot, now time.Time) string {
	var b strings.Builder
	fmt.Fprintln(&b, "HealthSync 2040 - Health Report")
	fmt.Fprintf(&b, "Patient: %s\n", p.Name)
	fmt.Fprintf(&b, "ID: %s\n", p.ID)
	fmt.Fprintf(&b, "Date: %s\n", now.Format("1/2/2006"))
	b.WriteString("\nCurrent Metrics:\n")
	fmt.Fprintf(&b, "- Heart Rate: %s BPM\n", plain(s.Value(feed.HeartRate)))
	fmt.Fprintf(&b, "- Blood Oxygen: %s%%\n", plain(s.Value(feed.BloodOxygen)))
	fmt.Fprintf(&b, "- Sleep Quality: %s%%\n", plain(s.Value(feed.SleepQuality)))
	fmt.Fprintf(&b, "- Body Temperature: %s°C\n", plain(s.Value(feed.Temperature)))
	fmt.Fprintf(&b, "- Steps Today: %s\n", plain(s.Value(feed.Steps)))
	fmt.Fprintf(&b, "- Hydration: %s%%\n", plain(s.Value(feed.Hydration)))
	b.WriteString("\nAI Recommendations:\n")
	for _, r := range recommendations {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	b.WriteString("\nGenerated by HealthSync 2040 AI System")
	return b.String()
}

// Filename is the download name, dated in UTC.
func Filename(p internal.Patient, now time.Time) string {
	return fmt.Sprintf("health-report-%s-%s.txt", p.ID, now.UTC().Format(time.DateOnly))
}

// plain prints a value without trailing zeros: 37 not 37.0.
func plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
