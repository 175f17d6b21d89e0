package service

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dctmd-mcp-server/internal/diagnosis"
	"github.com/dctmd-mcp-server/internal/domain"
)

// requestValidate is shared by all request types; validator caches struct metadata.
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	requestValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// EvaluateRequest asks for the verdicts of a patient data document.
// An empty Diagnoses list evaluates the whole registry.
type EvaluateRequest struct {
	Data      domain.Value `json:"data" validate:"-"`
	Diagnoses []string     `json:"diagnoses,omitempty" validate:"omitempty,max=32,dive,required,alphanum,max=64"`
}

// RelevanceRequest asks which examination items still matter given questionnaire answers.
type RelevanceRequest struct {
	SQ        domain.Value `json:"sq" validate:"-"`
	Diagnoses []string     `json:"diagnoses,omitempty" validate:"omitempty,max=32,dive,required,alphanum,max=64"`
}

// StoreRecordRequest stores a patient data document. A new ID is generated when empty.
type StoreRecordRequest struct {
	RecordID string       `json:"record_id,omitempty" validate:"omitempty,max=128,printascii"`
	Data     domain.Value `json:"data" validate:"-"`
}

// RecordEvaluationRequest evaluates a stored document.
type RecordEvaluationRequest struct {
	RecordID  string   `json:"record_id" validate:"required,max=128,printascii"`
	Diagnoses []string `json:"diagnoses,omitempty" validate:"omitempty,max=32,dive,required,alphanum,max=64"`
}

// EvaluationResponse carries the verdicts of one evaluation.
type EvaluationResponse struct {
	RecordID          string               `json:"record_id,omitempty"`
	Results           []diagnosis.Result   `json:"results"`
	PositiveDiagnoses []domain.DiagnosisID `json:"positive_diagnoses"`
	EvaluatedAt       time.Time            `json:"evaluated_at"`
	ProcessingTimeMs  int64                `json:"processing_time_ms"`
}

// validateRequest runs the struct tags and converts the first failure into a
// *domain.ValidationError.
func validateRequest(req interface{}) error {
	err := requestValidate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domain.NewValidationError(fe.Field(), "failed on '"+fe.Tag()+"'", fe.Value())
	}
	return domain.NewValidationError("request", err.Error(), nil)
}

// validateDocument accepts a mapping, or nothing at all (an empty document).
func validateDocument(field string, v domain.Value) error {
	switch v.Kind() {
	case domain.KindAbsent, domain.KindNull, domain.KindMap:
		return nil
	default:
		return domain.NewValidationError(field, "must be an object", v.Kind().String())
	}
}

func toDiagnosisIDs(ids []string) []domain.DiagnosisID {
	out := make([]domain.DiagnosisID, len(ids))
	for i, id := range ids {
		out[i] = domain.DiagnosisID(id)
	}
	return out
}
