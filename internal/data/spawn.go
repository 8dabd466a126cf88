package data

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SpawnEntry schedules an enemy spawn relative to server start.
type SpawnEntry struct {
	Name        string        `yaml:"name"`
	Delay       time.Duration `yaml:"delay"`    // first spawn after start
	Interval    time.Duration `yaml:"interval"` // 0 = spawn once
	Position    []float64     `yaml:"position"`
	Rotation    []float64     `yaml:"rotation"` // [x, y, z, w]
	HalfExtents []float64     `yaml:"half_extents"`
	Health      int           `yaml:"health"`
}

// SpawnTable is the ordered list of spawn entries.
type SpawnTable struct {
	entries []SpawnEntry
}

// LoadSpawnTable loads enemy_spawns.yaml.
func LoadSpawnTable(path string) (*SpawnTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn list: %w", err)
	}
	var entries []SpawnEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse spawn list: %w", err)
	}
	for i := range entries {
		entries[i].fillDefaults()
		if err := entries[i].validate(); err != nil {
			return nil, fmt.Errorf("spawn entry %d (%s): %w", i, entries[i].Name, err)
		}
	}
	return &SpawnTable{entries: entries}, nil
}

// DefaultSpawnTable is a single enemy ten seconds after start.
func DefaultSpawnTable() *SpawnTable {
	e := SpawnEntry{Name: "cube", Delay: 10 * time.Second}
	e.fillDefaults()
	return &SpawnTable{entries: []SpawnEntry{e}}
}

func (t *SpawnTable) Entries() []SpawnEntry {
	out := make([]SpawnEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Count returns the total number of spawn entries loaded.
func (t *SpawnTable) Count() int {
	return len(t.entries)
}

func (e *SpawnEntry) fillDefaults() {
	if e.Name == "" {
		e.Name = "cube"
	}
	if e.Position == nil {
		e.Position = []float64{0, 10, 0}
	}
	if e.Rotation == nil {
		e.Rotation = []float64{0, 0, 0, 1}
	}
	if e.HalfExtents == nil {
		e.HalfExtents = []float64{5, 5, 5}
	}
	if e.Health == 0 {
		e.Health = 100
	}
}

func (e *SpawnEntry) validate() error {
	var errs []error
	if e.Delay < 0 || e.Interval < 0 {
		errs = append(errs, errors.New("delay and interval must not be negative"))
	}
	if len(e.Position) != 3 {
		errs = append(errs, fmt.Errorf("position needs 3 components, got %d", len(e.Position)))
	}
	if len(e.Rotation) != 4 {
		errs = append(errs, fmt.Errorf("rotation needs 4 components, got %d", len(e.Rotation)))
	}
	if len(e.HalfExtents) != 3 {
		errs = append(errs, fmt.Errorf("half_extents needs 3 components, got %d", len(e.HalfExtents)))
	}
	for _, h := range e.HalfExtents {
		if h <= 0 {
			errs = append(errs, errors.New("half_extents must be positive"))
			break
		}
	}
	if e.Health < 0 {
		errs = append(errs, errors.New("health must be positive"))
	}
	return errors.Join(errs...)
}
