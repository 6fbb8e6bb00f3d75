package evaluation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/srq20-api/internal/domain/entities"
)

func fullResponses(value int) map[string]int {
	responses := make(map[string]int, entities.FeatureCount)
	for _, name := range entities.FeatureNames {
		responses[name] = value
	}
	return responses
}

func label(v int) *int {
	return &v
}

func writeDataset(t *testing.T, samples interface{}) string {
	t.Helper()
	data, err := json.Marshal(samples)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoadSamples(t *testing.T) {
	path := writeDataset(t, []LabelledSample{
		{ID: "p-001", Responses: fullResponses(0), Label: label(0)},
		{ID: "p-002", Responses: fullResponses(1), Label: label(1)},
	})

	samples, err := LoadSamples(path)

	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "p-002", samples[1].ID)
	assert.Equal(t, 1, samples[1].Responses["easily_tired"])
	assert.NoError(t, ValidateSamples(samples))
}

func TestLoadSamples_Errors(t *testing.T) {
	_, err := LoadSamples(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read dataset file")

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": `), 0o600))
	_, err = LoadSamples(path)
	assert.ErrorContains(t, err, "failed to parse dataset")
}

func TestValidateSamples(t *testing.T) {
	partial := fullResponses(0)
	delete(partial, "suicide")

	tests := []struct {
		name    string
		samples []LabelledSample
		wantErr string
	}{
		{"empty dataset", nil, "dataset is empty"},
		{"missing id", []LabelledSample{{Responses: fullResponses(0), Label: label(0)}}, "missing id"},
		{"duplicate id", []LabelledSample{
			{ID: "a", Responses: fullResponses(0), Label: label(0)},
			{ID: "a", Responses: fullResponses(1), Label: label(1)},
		}, `duplicate id "a"`},
		{"missing response", []LabelledSample{{ID: "a", Responses: partial, Label: label(0)}}, `missing response "suicide"`},
		{"missing label", []LabelledSample{{ID: "a", Responses: fullResponses(0)}}, `sample "a": missing label`},
		{"invalid label", []LabelledSample{{ID: "a", Responses: fullResponses(0), Label: label(2)}}, "invalid label 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSamples(tt.samples)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), "got %q", err.Error())
		})
	}
}

func TestLoadSamples_MissingLabelIsRejected(t *testing.T) {
	path := writeDataset(t, []map[string]interface{}{
		{"id": "p-001", "responses": fullResponses(0), "label": 0},
		{"id": "p-002", "responses": fullResponses(1)},
	})

	samples, err := LoadSamples(path)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	require.NotNil(t, samples[0].Label)
	assert.Equal(t, 0, *samples[0].Label)
	assert.Nil(t, samples[1].Label)

	err = ValidateSamples(samples)
	require.Error(t, err)
	assert.Equal(t, `sample "p-002": missing label`, err.Error())
}

func TestLabelledSample_Questionnaire(t *testing.T) {
	responses := fullResponses(0)
	responses["headache"] = 1
	responses["easily_tired"] = 1

	q := LabelledSample{ID: "x", Responses: responses}.Questionnaire()

	assert.Equal(t, 1, q.Headache)
	assert.Equal(t, 1, q.EasilyTired)
	assert.Equal(t, 2, q.TotalScore())
}
