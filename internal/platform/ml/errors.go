// Package ml loads the exported model artifacts (preprocessing transformer
// plus three classifiers) and scores normalized feature vectors. Artifacts
// are read once at startup and never mutated afterwards, so a Registry is
// safe for unsynchronized concurrent reads across request handlers.
package ml

import (
	"errors"
	"fmt"
)

// ErrModelUnavailable marks a missing or corrupt model artifact. It is fatal
// for the service: the ensemble cannot run with a partial set of artifacts.
var ErrModelUnavailable = errors.New("model artifact unavailable")

// SchemaError reports raw input that cannot be matched to the schema the
// transformer was fitted on. It is deliberately distinct from inference
// errors so operators can tell a data-shape bug from a model bug.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("feature schema mismatch: %s", e.Reason)
}

func schemaErrorf(format string, args ...interface{}) *SchemaError {
	return &SchemaError{Reason: fmt.Sprintf(format, args...)}
}

// IsSchemaError reports whether err is a feature-schema mismatch.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
