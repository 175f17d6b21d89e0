package criteria

import (
	"fmt"

	"github.com/dctmd-mcp-server/internal/domain"
)

// ConfigurationError reports a malformed criterion tree or a failing compute
// function. It is a programming error in a definition, never a clinical verdict.
type ConfigurationError struct {
	CriterionID string
	Kind        Kind
	Reason      string
	Err         error
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	id := e.CriterionID
	if id == "" {
		id = "<unnamed>"
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid %s criterion %s: %s: %v", e.Kind, id, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s criterion %s: %s", e.Kind, id, e.Reason)
}

// Unwrap exposes domain.ErrInvalidCriterion and the underlying cause.
func (e *ConfigurationError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrInvalidCriterion}
	}
	return []error{domain.ErrInvalidCriterion, e.Err}
}

func configError(c Criterion, reason string, err error) *ConfigurationError {
	ce := &ConfigurationError{Reason: reason, Err: err}
	if c != nil {
		ce.CriterionID = c.Metadata().ID
		ce.Kind = c.Kind()
	}
	return ce
}
