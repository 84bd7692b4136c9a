// Package explain produces per-feature attributions for forest predictions
// using decision-path decomposition: walking a tree from root to leaf, each
// split changes the expected prediction, and that change is credited to the
// feature the split tests. Averaging the credits over all trees yields a
// contribution vector whose entries sum to the forest output minus the
// root-level baseline.
package explain

import (
	"fmt"
	"sort"

	"github.com/cardionova/cardionova/internal/platform/ml"
)

// Contribution is one feature's share of the prediction.
type Contribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// Result carries the top contributions, or the reason attribution failed.
// Attribution is best effort: a failed walk never blocks a prediction.
type Result struct {
	Top []Contribution
	Err error
}

// TopFeatures attributes the forest's prediction for x across the named
// features and returns the n largest contributions by absolute value,
// ordered largest first.
func TopFeatures(forest *ml.Forest, x []float64, names []string, n int) Result {
	if forest == nil || len(forest.Trees) == 0 {
		return Result{Err: fmt.Errorf("no forest to attribute")}
	}
	if len(names) != len(x) {
		return Result{Err: fmt.Errorf("have %d feature names for a vector of width %d", len(names), len(x))}
	}

	total := make([]float64, len(x))
	for i := range forest.Trees {
		contrib, err := treeContributions(&forest.Trees[i], x)
		if err != nil {
			return Result{Err: fmt.Errorf("tree %d: %w", i, err)}
		}
		for j, v := range contrib {
			total[j] += v
		}
	}
	trees := float64(len(forest.Trees))

	ranked := make([]Contribution, len(x))
	for i := range total {
		ranked[i] = Contribution{Feature: names[i], Value: total[i] / trees}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return abs(ranked[a].Value) > abs(ranked[b].Value)
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return Result{Top: ranked}
}

// treeContributions walks one tree and credits each split's change in node
// value to the split feature.
func treeContributions(t *ml.Tree, x []float64) ([]float64, error) {
	if len(t.Nodes) == 0 {
		return nil, fmt.Errorf("tree has no nodes")
	}
	contrib := make([]float64, len(x))
	idx := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		n := t.Nodes[idx]
		if n.Feature < 0 {
			return contrib, nil
		}
		if n.Feature >= len(x) {
			return nil, fmt.Errorf("node %d splits on feature %d, vector width is %d", idx, n.Feature, len(x))
		}
		next := n.Right
		if x[n.Feature] <= n.Threshold {
			next = n.Left
		}
		if next < 0 || next >= len(t.Nodes) {
			return nil, fmt.Errorf("node index %d out of range", next)
		}
		contrib[n.Feature] += t.Nodes[next].Value - n.Value
		idx = next
	}
	return nil, fmt.Errorf("tree walk did not terminate")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
