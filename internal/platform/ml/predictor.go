package ml

import (
	"fmt"
	"math"
)

// Predictor is the single capability the ensemble needs from each of its
// members: a class-1 probability for one transformed feature vector.
type Predictor interface {
	PredictProba(x []float64) (float64, error)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Logistic is an exported logistic-regression classifier.
type Logistic struct {
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
}

func (m *Logistic) PredictProba(x []float64) (float64, error) {
	if len(x) != len(m.Coef) {
		return 0, fmt.Errorf("logistic: vector width %d does not match %d coefficients", len(x), len(m.Coef))
	}
	z := m.Intercept
	for i, c := range m.Coef {
		z += c * x[i]
	}
	return sigmoid(z), nil
}

// Node is one node of an exported decision tree. Leaves have Feature == -1.
// Value is the mean target at the node — kept on internal nodes too so the
// attribution walk can credit each split with its change in expectation.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a single exported decision tree.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Leaf returns the value at the leaf the vector routes to. The walk follows
// the fitted convention: x[feature] <= threshold goes left.
func (t *Tree) Leaf(x []float64) (float64, error) {
	if len(t.Nodes) == 0 {
		return 0, fmt.Errorf("tree has no nodes")
	}
	idx := 0
	// A well-formed tree terminates well before len(Nodes) steps; the bound
	// guards against cycles in a corrupt artifact.
	for steps := 0; steps <= len(t.Nodes); steps++ {
		n := t.Nodes[idx]
		if n.Feature < 0 {
			return n.Value, nil
		}
		if n.Feature >= len(x) {
			return 0, fmt.Errorf("tree node %d splits on feature %d, vector width is %d", idx, n.Feature, len(x))
		}
		if x[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
		if idx < 0 || idx >= len(t.Nodes) {
			return 0, fmt.Errorf("tree node index %d out of range", idx)
		}
	}
	return 0, fmt.Errorf("tree walk did not terminate")
}

// Forest is an exported random-forest classifier; leaf values are class-1
// probabilities and the forest output is their mean.
type Forest struct {
	Trees []Tree `json:"trees"`
}

func (m *Forest) PredictProba(x []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, fmt.Errorf("forest has no trees")
	}
	sum := 0.0
	for i := range m.Trees {
		v, err := m.Trees[i].Leaf(x)
		if err != nil {
			return 0, fmt.Errorf("forest tree %d: %w", i, err)
		}
		sum += v
	}
	return sum / float64(len(m.Trees)), nil
}

// GradientBoosting is an exported gradient-boosted tree classifier; leaf
// values are margins summed into a logit.
type GradientBoosting struct {
	Bias         float64 `json:"bias"`
	LearningRate float64 `json:"learning_rate"`
	Trees        []Tree  `json:"trees"`
}

func (m *GradientBoosting) PredictProba(x []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, fmt.Errorf("boosted model has no trees")
	}
	lr := m.LearningRate
	if lr == 0 {
		lr = 1
	}
	z := m.Bias
	for i := range m.Trees {
		v, err := m.Trees[i].Leaf(x)
		if err != nil {
			return 0, fmt.Errorf("boosted tree %d: %w", i, err)
		}
		z += lr * v
	}
	return sigmoid(z), nil
}
