package ml

import "fmt"

// NumericFeature is a standardized numeric column of the fitted transformer.
type NumericFeature struct {
	Name  string  `json:"name"`
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// CategoricalFeature is a one-hot encoded column group. Categories are the
// exact levels seen at fit time; anything else is a schema mismatch, the same
// strictness the fitted encoder applied.
type CategoricalFeature struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// Preprocessor mirrors the fitted column transformer: standardized numeric
// columns first, then one-hot categorical groups, in artifact order.
type Preprocessor struct {
	Numeric     []NumericFeature     `json:"numeric"`
	Categorical []CategoricalFeature `json:"categorical"`
}

// Width returns the length of the transformed feature vector.
func (p *Preprocessor) Width() int {
	n := len(p.Numeric)
	for _, c := range p.Categorical {
		n += len(c.Categories)
	}
	return n
}

// FeatureNames returns the post-transform column names, aligned with the
// vector Transform produces. Used to label attribution output. The slice is
// built fresh on every call so concurrent readers never share state.
func (p *Preprocessor) FeatureNames() []string {
	names := make([]string, 0, p.Width())
	for _, f := range p.Numeric {
		names = append(names, f.Name)
	}
	for _, c := range p.Categorical {
		for _, cat := range c.Categories {
			names = append(names, fmt.Sprintf("%s_%s", c.Name, cat))
		}
	}
	return names
}

// Transform maps a normalized row onto the transformed feature vector.
// Missing columns, non-numeric numeric values and unseen categorical levels
// all produce a SchemaError.
func (p *Preprocessor) Transform(row map[string]interface{}) ([]float64, error) {
	x := make([]float64, 0, p.Width())

	for _, f := range p.Numeric {
		v, ok := row[f.Name]
		if !ok {
			return nil, schemaErrorf("missing numeric column %q", f.Name)
		}
		val, ok := toFloat(v)
		if !ok {
			return nil, schemaErrorf("column %q: cannot interpret %v as a number", f.Name, v)
		}
		scale := f.Scale
		if scale == 0 {
			scale = 1
		}
		x = append(x, (val-f.Mean)/scale)
	}

	for _, c := range p.Categorical {
		v, ok := row[c.Name]
		if !ok {
			return nil, schemaErrorf("missing categorical column %q", c.Name)
		}
		level := categoryString(v)
		hit := -1
		for i, cat := range c.Categories {
			if cat == level {
				hit = i
				break
			}
		}
		if hit < 0 {
			return nil, schemaErrorf("column %q: unknown category %q", c.Name, level)
		}
		for i := range c.Categories {
			if i == hit {
				x = append(x, 1)
			} else {
				x = append(x, 0)
			}
		}
	}

	return x, nil
}
