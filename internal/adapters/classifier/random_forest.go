package classifier

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/zatekoja/srq20-api/internal/domain/providers"
	apperrors "github.com/zatekoja/srq20-api/pkg/errors"
)

const leafMarker = -1

// forestArtifact is the JSON export of a fitted random forest. Tree arrays
// mirror scikit-learn's tree_ attributes.
type forestArtifact struct {
	ModelType    string         `json:"model_type"`
	Version      string         `json:"version"`
	NFeatures    int            `json:"n_features"`
	FeatureNames []string       `json:"feature_names"`
	Classes      []int          `json:"classes"`
	Trees        []treeArtifact `json:"trees"`
}

type treeArtifact struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

type node struct {
	left      int
	right     int
	feature   int
	threshold float64
	proba     []float64
}

type decisionTree struct {
	nodes []node
}

// RandomForest is an immutable random forest classifier. It is safe for
// concurrent use.
type RandomForest struct {
	version   string
	nFeatures int
	classes   []int
	trees     []decisionTree
}

var _ providers.Classifier = (*RandomForest)(nil)

// LoadRandomForest reads and validates a forest artifact. When
// expectedFeatures is non-empty the artifact must have been trained on
// exactly those features in that order.
func LoadRandomForest(path string, expectedFeatures []string) (*RandomForest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewModelLoadError(
				fmt.Sprintf("model file '%s' not found, place it next to the service or set MODEL_PATH", path), err)
		}
		return nil, apperrors.NewModelLoadError("failed to read model file", err)
	}
	return ParseRandomForest(data, expectedFeatures)
}

// ParseRandomForest decodes and validates a forest artifact.
func ParseRandomForest(data []byte, expectedFeatures []string) (*RandomForest, error) {
	var artifact forestArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, apperrors.NewModelLoadError("failed to decode model artifact", err)
	}

	if err := artifact.validate(expectedFeatures); err != nil {
		return nil, apperrors.NewModelLoadError("invalid model artifact", err)
	}

	sum := sha256.Sum256(data)
	version := artifact.Version
	if version == "" {
		version = "unversioned"
	}

	forest := &RandomForest{
		version:   version + "@" + hex.EncodeToString(sum[:6]),
		nFeatures: artifact.NFeatures,
		classes:   append([]int(nil), artifact.Classes...),
		trees:     make([]decisionTree, 0, len(artifact.Trees)),
	}
	for _, t := range artifact.Trees {
		forest.trees = append(forest.trees, t.build())
	}
	return forest, nil
}

func (a *forestArtifact) validate(expectedFeatures []string) error {
	if a.ModelType != "" && a.ModelType != "random_forest" {
		return fmt.Errorf("unsupported model_type %q", a.ModelType)
	}
	if a.NFeatures <= 0 {
		return fmt.Errorf("n_features must be positive, got %d", a.NFeatures)
	}
	if len(expectedFeatures) > 0 && a.NFeatures != len(expectedFeatures) {
		return fmt.Errorf("model expects %d features, service provides %d", a.NFeatures, len(expectedFeatures))
	}
	if len(a.FeatureNames) > 0 {
		if len(a.FeatureNames) != a.NFeatures {
			return fmt.Errorf("feature_names has %d entries, n_features is %d", len(a.FeatureNames), a.NFeatures)
		}
		for i, name := range expectedFeatures {
			if a.FeatureNames[i] != name {
				return fmt.Errorf("feature %d is %q in the model, expected %q", i, a.FeatureNames[i], name)
			}
		}
	}

	if len(a.Classes) == 0 {
		return fmt.Errorf("classes must not be empty")
	}
	seen := make(map[int]struct{}, len(a.Classes))
	for _, c := range a.Classes {
		if _, dup := seen[c]; dup {
			return fmt.Errorf("duplicate class %d", c)
		}
		seen[c] = struct{}{}
	}

	if len(a.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	for i := range a.Trees {
		if err := a.Trees[i].validate(a.NFeatures, len(a.Classes)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (t *treeArtifact) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays differ in length")
	}

	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == leafMarker {
			if right != leafMarker {
				return fmt.Errorf("node %d has a right child but no left child", i)
			}
			if len(t.Value[i]) != nClasses {
				return fmt.Errorf("leaf %d has %d class values, expected %d", i, len(t.Value[i]), nClasses)
			}
			total := 0.0
			for _, v := range t.Value[i] {
				if v < 0 {
					return fmt.Errorf("leaf %d has a negative class value", i)
				}
				total += v
			}
			if total <= 0 {
				return fmt.Errorf("leaf %d has no samples", i)
			}
			continue
		}

		// children always follow their parent in depth-first export order,
		// which also rules out cycles
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("node %d has out of range children (%d, %d)", i, left, right)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d, model has %d", i, t.Feature[i], nFeatures)
		}
	}
	return nil
}

func (t *treeArtifact) build() decisionTree {
	nodes := make([]node, len(t.ChildrenLeft))
	for i := range nodes {
		nodes[i] = node{
			left:      t.ChildrenLeft[i],
			right:     t.ChildrenRight[i],
			feature:   t.Feature[i],
			threshold: t.Threshold[i],
		}
		if nodes[i].left == leafMarker {
			nodes[i].proba = normalize(t.Value[i])
		}
	}
	return decisionTree{nodes: nodes}
}

func normalize(values []float64) []float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / total
	}
	return out
}

func (t *decisionTree) leaf(features []float64) []float64 {
	i := 0
	for t.nodes[i].left != leafMarker {
		n := t.nodes[i]
		if features[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
	return t.nodes[i].proba
}

// PredictProba averages the leaf distributions of every tree.
func (f *RandomForest) PredictProba(features []float64) ([]float64, error) {
	if len(features) != f.nFeatures {
		return nil, fmt.Errorf("X has %d features, but RandomForestClassifier is expecting %d features as input", len(features), f.nFeatures)
	}

	proba := make([]float64, len(f.classes))
	for i := range f.trees {
		for c, p := range f.trees[i].leaf(features) {
			proba[c] += p
		}
	}
	for c := range proba {
		proba[c] /= float64(len(f.trees))
	}
	return proba, nil
}

// Predict returns the class with the highest averaged probability. Ties go
// to the class listed first.
func (f *RandomForest) Predict(features []float64) (int, error) {
	proba, err := f.PredictProba(features)
	if err != nil {
		return 0, err
	}

	best := 0
	for c := 1; c < len(proba); c++ {
		if proba[c] > proba[best] {
			best = c
		}
	}
	return f.classes[best], nil
}

// Classes returns the class labels in probability order.
func (f *RandomForest) Classes() []int {
	return append([]int(nil), f.classes...)
}

// Version returns the artifact version suffixed with a short content hash.
func (f *RandomForest) Version() string {
	return f.version
}

// NumTrees returns the number of estimators.
func (f *RandomForest) NumTrees() int {
	return len(f.trees)
}
