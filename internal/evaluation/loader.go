package evaluation

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zatekoja/srq20-api/internal/domain/entities"
)

// LoadSamples reads and parses a labelled dataset from a JSON file.
func LoadSamples(path string) ([]LabelledSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	var samples []LabelledSample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}

	return samples, nil
}

// ValidateSamples checks that all samples have required fields and valid values.
func ValidateSamples(samples []LabelledSample) error {
	if len(samples) == 0 {
		return fmt.Errorf("dataset is empty")
	}

	seen := make(map[string]struct{}, len(samples))

	for i, s := range samples {
		if s.ID == "" {
			return fmt.Errorf("sample at index %d: missing id", i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("sample at index %d: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = struct{}{}

		for _, name := range entities.FeatureNames {
			if _, ok := s.Responses[name]; !ok {
				return fmt.Errorf("sample %q: missing response %q", s.ID, name)
			}
		}
		if s.Label == nil {
			return fmt.Errorf("sample %q: missing label", s.ID)
		}
		if *s.Label != 0 && *s.Label != 1 {
			return fmt.Errorf("sample %q: invalid label %d (must be 0 or 1)", s.ID, *s.Label)
		}
	}

	return nil
}
