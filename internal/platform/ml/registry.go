package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names inside MODEL_DIR. These are the JSON exports of the
// fitted pipeline; training them is out of scope for this service.
const (
	PreprocessorFile = "preprocessor.json"
	LogisticFile     = "logistic.json"
	ForestFile       = "forest.json"
	BoostedFile      = "gbt.json"
)

// Risk levels, a monotone bucketing of the ensemble score.
const (
	LevelLow      = "Low"
	LevelModerate = "Moderate"
	LevelHigh     = "High"
)

// RiskLevel buckets a score into Low/Moderate/High with fixed thresholds.
func RiskLevel(score float64) string {
	switch {
	case score < 0.33:
		return LevelLow
	case score < 0.66:
		return LevelModerate
	default:
		return LevelHigh
	}
}

// Registry holds the loaded transformer and the three classifiers. It is
// built once at startup and read-only afterwards.
type Registry struct {
	pre      *Preprocessor
	logistic *Logistic
	forest   *Forest
	boosted  *GradientBoosting
}

// NewRegistry assembles a registry from already-loaded artifacts. Used by
// tests and by LoadRegistry.
func NewRegistry(pre *Preprocessor, logistic *Logistic, forest *Forest, boosted *GradientBoosting) *Registry {
	return &Registry{pre: pre, logistic: logistic, forest: forest, boosted: boosted}
}

// LoadRegistry reads the four artifacts from dir. Any missing or corrupt
// artifact wraps ErrModelUnavailable — the caller should treat that as fatal
// rather than per-request.
func LoadRegistry(dir string) (*Registry, error) {
	var pre Preprocessor
	if err := loadArtifact(dir, PreprocessorFile, &pre); err != nil {
		return nil, err
	}
	if pre.Width() == 0 {
		return nil, fmt.Errorf("%w: %s defines no columns", ErrModelUnavailable, PreprocessorFile)
	}

	var logistic Logistic
	if err := loadArtifact(dir, LogisticFile, &logistic); err != nil {
		return nil, err
	}
	if len(logistic.Coef) != pre.Width() {
		return nil, fmt.Errorf("%w: %s has %d coefficients, transformer width is %d",
			ErrModelUnavailable, LogisticFile, len(logistic.Coef), pre.Width())
	}

	var forest Forest
	if err := loadArtifact(dir, ForestFile, &forest); err != nil {
		return nil, err
	}
	if len(forest.Trees) == 0 {
		return nil, fmt.Errorf("%w: %s has no trees", ErrModelUnavailable, ForestFile)
	}

	var boosted GradientBoosting
	if err := loadArtifact(dir, BoostedFile, &boosted); err != nil {
		return nil, err
	}
	if len(boosted.Trees) == 0 {
		return nil, fmt.Errorf("%w: %s has no trees", ErrModelUnavailable, BoostedFile)
	}

	return NewRegistry(&pre, &logistic, &forest, &boosted), nil
}

func loadArtifact(dir, name string, dst interface{}) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrModelUnavailable, name, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrModelUnavailable, name, err)
	}
	return nil
}

// Preprocessor returns the fitted transformer.
func (r *Registry) Preprocessor() *Preprocessor { return r.pre }

// Forest returns the forest member, the representative model used for
// attribution.
func (r *Registry) Forest() *Forest { return r.forest }

// Score feeds the transformed vector to each classifier independently and
// averages the three probabilities. Deterministic given the same loaded
// artifacts and input.
func (r *Registry) Score(x []float64) (float64, string, error) {
	members := []Predictor{r.logistic, r.forest, r.boosted}
	sum := 0.0
	for _, m := range members {
		p, err := m.PredictProba(x)
		if err != nil {
			return 0, "", err
		}
		sum += p
	}
	score := sum / float64(len(members))
	return score, RiskLevel(score), nil
}
