// Package catalog is the read-only directory of AI doctors. Profiles ship
// embedded in the binary and can be overridden from a YAML file that is
// reloaded when it changes.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/format"
)

//go:embed doctors.yaml
var defaultProfiles []byte

// NotSelected is shown wherever a doctor id does not resolve.
const NotSelected = "Not selected"

type Stat struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

type Doctor struct {
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	Title           string   `yaml:"title" json:"title"`
	Avatar          string   `yaml:"avatar" json:"avatar"`
	Rating          float64  `yaml:"rating" json:"rating"`
	Reviews         int      `yaml:"reviews" json:"reviews"`
	ResponseTime    string   `yaml:"response_time" json:"response_time"`
	Description     string   `yaml:"description" json:"description"`
	Specializations []string `yaml:"specializations" json:"specializations"`
	Stats           []Stat   `yaml:"stats" json:"stats"`
	Education       []string `yaml:"education" json:"education"`
	Certifications  []string `yaml:"certifications" json:"certifications"`
	Availability    string   `yaml:"availability" json:"availability"`
	ConsultationFee string   `yaml:"consultation_fee" json:"consultation_fee"`
	Languages       []string `yaml:"languages" json:"languages"`
}

// RatingText renders "4.9/5.0 (12,847 reviews)".
func (d Doctor) RatingText() string {
	return fmt.Sprintf("%.1f/5.0 (%s reviews)", d.Rating, format.Grouped(int64(d.Reviews)))
}

// StarRow is how many full, half and empty stars a rating shows out of five.
type StarRow struct {
	Full  int `json:"full"`
	Half  int `json:"half"`
	Empty int `json:"empty"`
}

func Stars(rating float64) StarRow {
	rating = math.Max(0, math.Min(5, rating))
	full := int(math.Floor(rating))
	half := 0
	if rating != math.Floor(rating) {
		half = 1
	}
	return StarRow{Full: full, Half: half, Empty: 5 - full - half}
}

// Parse decodes a YAML list of doctors. Ids must be present and unique.
func Parse(data []byte) ([]Doctor, error) {
	var doctors []Doctor
	if err := yaml.Unmarshal(data, &doctors); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if len(doctors) == 0 {
		return nil, errors.New("catalog: no doctors defined")
	}
	seen := make(map[string]bool, len(doctors))
	for i, d := range doctors {
		if d.ID == "" {
			return nil, fmt.Errorf("catalog: doctor %d has no id", i)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("catalog: duplicate doctor id %q", d.ID)
		}
		seen[d.ID] = true
	}
	return doctors, nil
}

type Catalog struct {
	mu      sync.RWMutex
	doctors []Doctor
	byID    map[string]int
	logger  internal.Logger
}

// New returns a catalog holding the embedded profiles.
func New(logger internal.Logger) (*Catalog, error) {
	if logger == nil {
		logger = internal.NopLogger()
	}
	c := &Catalog{logger: logger}
	if err := c.Load(defaultProfiles); err != nil {
		return nil, err
	}
	return c, nil
}

// Load replaces the catalog contents. On error the old contents stay.
func (c *Catalog) Load(data []byte) error {
	doctors, err := Parse(data)
	if err != nil {
		return err
	}
	byID := make(map[string]int, len(doctors))
	for i, d := range doctors {
		byID[d.ID] = i
	}
	c.mu.Lock()
	c.doctors = doctors
	c.byID = byID
	c.mu.Unlock()
	return nil
}

func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return c.Load(data)
}

func (c *Catalog) Lookup(id string) (Doctor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return Doctor{}, false
	}
	return c.doctors[i], true
}

// List returns every doctor in catalog order.
func (c *Catalog) List() []Doctor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Doctor, len(c.doctors))
	copy(out, c.doctors)
	return out
}

// Name returns the display name for id, or NotSelected.
func (c *Catalog) Name(id string) string {
	if d, ok := c.Lookup(id); ok {
		return d.Name
	}
	return NotSelected
}

// Watch loads path and reloads it whenever it is written or replaced, until
// ctx is done. A bad reload is logged and the previous profiles stay.
func (c *Catalog) Watch(ctx context.Context, path string) error {
	if err := c.LoadFile(path); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog: create watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are still seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("catalog: watch %s: %w", path, err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(path)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					continue
				}
				if err := c.LoadFile(path); err != nil {
					c.logger.Warnf("catalog: reload failed, keeping previous profiles: %v", err)
					continue
				}
				c.logger.Infof("catalog: reloaded %s", path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warnf("catalog: watcher error: %v", err)
			}
		}
	}()
	return nil
}
