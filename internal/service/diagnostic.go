package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dctmd-mcp-server/internal/diagnosis"
	"github.com/dctmd-mcp-server/internal/domain"
)

// ErrRecordsUnavailable is returned by record operations when no store is configured.
var ErrRecordsUnavailable = errors.New("record store not configured")

// DiagnosticService wraps the pure diagnosis engine with request validation,
// logging, metrics and record lookup.
type DiagnosticService struct {
	logger   *logrus.Logger
	registry *diagnosis.Registry
	records  domain.RecordStore
}

// NewDiagnosticService creates a new diagnostic service. records may be nil.
func NewDiagnosticService(logger *logrus.Logger, registry *diagnosis.Registry, records domain.RecordStore) *DiagnosticService {
	return &DiagnosticService{
		logger:   logger,
		registry: registry,
		records:  records,
	}
}

// ListDiagnoses returns the registry summaries
func (s *DiagnosticService) ListDiagnoses() []diagnosis.Summary {
	return s.registry.Summaries()
}

// Evaluate evaluates a patient data document against the requested diagnoses
func (s *DiagnosticService) Evaluate(ctx context.Context, req *EvaluateRequest) (*EvaluationResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, fmt.Errorf("invalid evaluate request: %w", err)
	}
	if err := validateDocument("data", req.Data); err != nil {
		return nil, fmt.Errorf("invalid evaluate request: %w", err)
	}
	return s.evaluate(ctx, "", req.Data, req.Diagnoses)
}

// EvaluateRecord loads a stored document and evaluates it
func (s *DiagnosticService) EvaluateRecord(ctx context.Context, req *RecordEvaluationRequest) (*EvaluationResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, fmt.Errorf("invalid record evaluation request: %w", err)
	}
	if s.records == nil {
		return nil, ErrRecordsUnavailable
	}

	record, err := s.records.GetRecord(ctx, req.RecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", req.RecordID, err)
	}
	return s.evaluate(ctx, record.ID, record.Data, req.Diagnoses)
}

func (s *DiagnosticService) evaluate(ctx context.Context, recordID string, data domain.Value, ids []string) (*EvaluationResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defs, err := s.registry.Select(toDiagnosisIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to select diagnoses: %w", err)
	}

	start := time.Now()
	results, err := diagnosis.EvaluateAll(defs, data)
	elapsed := time.Since(start)
	evaluationDuration.WithLabelValues("evaluate").Observe(elapsed.Seconds())
	if err != nil {
		configurationErrors.Inc()
		s.logger.WithError(err).WithField("record_id", recordID).Error("Diagnosis configuration error")
		return nil, fmt.Errorf("failed to evaluate diagnoses: %w", err)
	}

	resp := &EvaluationResponse{
		RecordID:          recordID,
		Results:           results,
		PositiveDiagnoses: []domain.DiagnosisID{},
		EvaluatedAt:       time.Now().UTC(),
		ProcessingTimeMs:  elapsed.Milliseconds(),
	}

	pending := 0
	for _, r := range results {
		diagnosisEvaluations.WithLabelValues(string(r.DiagnosisID), string(r.Status)).Inc()
		s.logger.WithFields(logrus.Fields{
			"diagnosis":          r.DiagnosisID,
			"status":             r.Status,
			"positive_locations": len(r.PositiveLocations),
		}).Debug("Diagnosis evaluated")

		switch {
		case r.IsPositive:
			resp.PositiveDiagnoses = append(resp.PositiveDiagnoses, r.DiagnosisID)
		case r.Status == domain.PENDING:
			pending++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"record_id":          recordID,
		"diagnoses":          len(results),
		"positive":           len(resp.PositiveDiagnoses),
		"pending":            pending,
		"processing_time_ms": resp.ProcessingTimeMs,
	}).Info("Diagnostic evaluation completed")

	return resp, nil
}

// RelevantItems determines which diagnoses remain possible and which examination
// fields still matter, from questionnaire answers alone
func (s *DiagnosticService) RelevantItems(ctx context.Context, req *RelevanceRequest) (*diagnosis.RelevanceResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, fmt.Errorf("invalid relevance request: %w", err)
	}
	if err := validateDocument("sq", req.SQ); err != nil {
		return nil, fmt.Errorf("invalid relevance request: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defs, err := s.registry.Select(toDiagnosisIDs(req.Diagnoses))
	if err != nil {
		return nil, fmt.Errorf("failed to select diagnoses: %w", err)
	}

	start := time.Now()
	res, err := diagnosis.RelevantExaminationItems(req.SQ, defs)
	evaluationDuration.WithLabelValues("relevance").Observe(time.Since(start).Seconds())
	if err != nil {
		configurationErrors.Inc()
		return nil, fmt.Errorf("failed to analyze relevance: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"possible":  len(res.PossibleDiagnoses),
		"ruled_out": len(res.RuledOutDiagnoses),
		"sections":  res.RelevantSections,
	}).Debug("Relevance analysis completed")

	return &res, nil
}

// StoreRecord validates and persists a patient data document
func (s *DiagnosticService) StoreRecord(ctx context.Context, req *StoreRecordRequest) (*domain.PatientRecord, error) {
	if err := validateRequest(req); err != nil {
		return nil, fmt.Errorf("invalid store request: %w", err)
	}
	if req.Data.Kind() != domain.KindMap {
		return nil, fmt.Errorf("invalid store request: %w",
			domain.NewValidationError("data", "must be an object", req.Data.Kind().String()))
	}
	if s.records == nil {
		return nil, ErrRecordsUnavailable
	}

	id := req.RecordID
	if id == "" {
		id = uuid.New().String()
	}

	now := time.Now().UTC()
	record := &domain.PatientRecord{
		ID:        id,
		Data:      req.Data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.records.SaveRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store record %s: %w", id, err)
	}

	s.logger.WithField("record_id", id).Info("Patient record stored")
	return record, nil
}
