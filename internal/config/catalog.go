package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/claude/repcoach/internal/models"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Exercises []models.ExerciseMetadata `yaml:"exercises"`
}

// LoadCatalog reads the exercise catalog. Entries without an ID get a slug of
// their name; muscle groups are lowercased.
func LoadCatalog(path string) ([]models.ExerciseMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	seen := make(map[string]bool, len(f.Exercises))
	for i := range f.Exercises {
		ex := &f.Exercises[i]
		ex.Name = strings.TrimSpace(ex.Name)
		if ex.Name == "" {
			return nil, fmt.Errorf("catalog entry %d: name is required", i+1)
		}
		if ex.PrimaryMuscle == "" {
			return nil, fmt.Errorf("catalog entry %q: primary_muscle is required", ex.Name)
		}
		if ex.RepRange != (models.RepRange{}) && !ex.RepRange.Valid() {
			return nil, fmt.Errorf("catalog entry %q: invalid rep_range", ex.Name)
		}
		if ex.ID == "" {
			ex.ID = slug(ex.Name)
		}
		if seen[ex.ID] {
			return nil, fmt.Errorf("catalog entry %q: duplicate id %q", ex.Name, ex.ID)
		}
		seen[ex.ID] = true
		ex.PrimaryMuscle = strings.ToLower(ex.PrimaryMuscle)
		for j, m := range ex.SecondaryMuscles {
			ex.SecondaryMuscles[j] = strings.ToLower(m)
		}
	}
	return f.Exercises, nil
}

// slug turns "Romanian Deadlift (DB)" into "romanian-deadlift-db".
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
