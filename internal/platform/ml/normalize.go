package ml

import (
	"strconv"
	"strings"
)

// RequiredFields are the raw clinical inputs every assessment must carry.
var RequiredFields = []string{
	"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg",
	"thalach", "exang", "oldpeak", "slope", "ca", "thal",
}

// Normalize validates the raw clinical input and adds the derived columns the
// fitted transformer expects: an age bucket, blood-pressure and cholesterol
// categories, and a `thalch` alias mirroring `thalach` (the training schema
// carried the misspelled column). The input map is not modified.
func Normalize(raw map[string]interface{}) (map[string]interface{}, error) {
	var missing []string
	for _, f := range RequiredFields {
		if _, ok := raw[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, schemaErrorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	row := make(map[string]interface{}, len(raw)+4)
	for k, v := range raw {
		row[k] = v
	}

	if _, ok := row["thalch"]; !ok {
		row["thalch"] = row["thalach"]
	}
	if _, ok := row["age_group"]; !ok {
		row["age_group"] = ageGroup(row["age"])
	}
	if _, ok := row["bp_cat"]; !ok {
		row["bp_cat"] = bpCategory(row["trestbps"])
	}
	if _, ok := row["chol_cat"]; !ok {
		row["chol_cat"] = cholCategory(row["chol"])
	}

	return row, nil
}

func ageGroup(v interface{}) string {
	a, ok := toFloat(v)
	if !ok {
		return "unknown"
	}
	switch {
	case a < 31:
		return "0-30"
	case a < 46:
		return "31-45"
	case a < 61:
		return "46-60"
	default:
		return "61+"
	}
}

func bpCategory(v interface{}) string {
	b, ok := toFloat(v)
	if !ok {
		return "unknown"
	}
	switch {
	case b < 120:
		return "normal"
	case b < 130:
		return "elevated"
	case b < 140:
		return "hypertension1"
	default:
		return "hypertension2"
	}
}

func cholCategory(v interface{}) string {
	c, ok := toFloat(v)
	if !ok {
		return "unknown"
	}
	switch {
	case c < 200:
		return "normal"
	case c < 240:
		return "borderline"
	default:
		return "high"
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// categoryString renders a raw value the way categorical artifact levels are
// stored: integral floats without a trailing ".0" so JSON numbers line up
// with exported category labels.
func categoryString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}
