package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/dctmd-mcp-server/internal/diagnosis"
	"github.com/dctmd-mcp-server/internal/domain"
	"github.com/dctmd-mcp-server/internal/service"
)

// Tool names
const (
	ToolListDiagnoses     = "list_diagnoses"
	ToolEvaluateDiagnoses = "evaluate_diagnoses"
	ToolRelevantItems     = "relevant_examination_items"
	ToolEvaluateRecord    = "evaluate_record"
)

// ListDiagnosesParams defines parameters for list_diagnoses tool
type ListDiagnosesParams struct{}

// EvaluateDiagnosesParams defines parameters for evaluate_diagnoses tool
type EvaluateDiagnosesParams struct {
	Data         map[string]any `json:"data" jsonschema:"patient data document with sq and e1 to e10 sections"`
	Diagnoses    []string       `json:"diagnoses,omitempty" jsonschema:"diagnosis IDs to evaluate; all when empty"`
	IncludeTrace bool           `json:"include_trace,omitempty" jsonschema:"include full criterion evaluation trees"`
}

// RelevantItemsParams defines parameters for relevant_examination_items tool
type RelevantItemsParams struct {
	SQ        map[string]any `json:"sq" jsonschema:"questionnaire answers keyed by question ID such as SQ1"`
	Diagnoses []string       `json:"diagnoses,omitempty" jsonschema:"diagnosis IDs to consider; all when empty"`
}

// EvaluateRecordParams defines parameters for evaluate_record tool
type EvaluateRecordParams struct {
	RecordID     string   `json:"record_id" jsonschema:"stored patient record ID"`
	Diagnoses    []string `json:"diagnoses,omitempty" jsonschema:"diagnosis IDs to evaluate; all when empty"`
	IncludeTrace bool     `json:"include_trace,omitempty" jsonschema:"include full criterion evaluation trees"`
}

// DiagnosisVerdict is the compact per-diagnosis result returned without a trace
type DiagnosisVerdict struct {
	DiagnosisID       domain.DiagnosisID     `json:"diagnosis_id"`
	Status            domain.CriterionStatus `json:"status"`
	AnamnesisStatus   domain.CriterionStatus `json:"anamnesis_status"`
	PositiveLocations []diagnosis.Location   `json:"positive_locations"`
	Summary           string                 `json:"summary"`
}

// CompactEvaluation is the evaluate_* result without criterion trees
type CompactEvaluation struct {
	RecordID          string               `json:"record_id,omitempty"`
	Verdicts          []DiagnosisVerdict   `json:"verdicts"`
	PositiveDiagnoses []domain.DiagnosisID `json:"positive_diagnoses"`
	ProcessingTimeMs  int64                `json:"processing_time_ms"`
}

func compact(resp *service.EvaluationResponse) CompactEvaluation {
	out := CompactEvaluation{
		RecordID:          resp.RecordID,
		Verdicts:          make([]DiagnosisVerdict, len(resp.Results)),
		PositiveDiagnoses: resp.PositiveDiagnoses,
		ProcessingTimeMs:  resp.ProcessingTimeMs,
	}
	for i, r := range resp.Results {
		out.Verdicts[i] = DiagnosisVerdict{
			DiagnosisID:       r.DiagnosisID,
			Status:            r.Status,
			AnamnesisStatus:   r.AnamnesisResult.Status,
			PositiveLocations: r.PositiveLocations,
			Summary:           r.Summary(),
		}
	}
	return out
}

func (s *Server) handleListDiagnoses(ctx context.Context, req *mcp.CallToolRequest, _ ListDiagnosesParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolListDiagnoses).Debug("Tool invoked")
	return s.jsonResult(map[string]any{"diagnoses": s.service.ListDiagnoses()})
}

func (s *Server) handleEvaluateDiagnoses(ctx context.Context, req *mcp.CallToolRequest, params EvaluateDiagnosesParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolEvaluateDiagnoses).Debug("Tool invoked")

	resp, err := s.service.Evaluate(ctx, &service.EvaluateRequest{
		Data:      domain.FromAny(params.Data),
		Diagnoses: params.Diagnoses,
	})
	if err != nil {
		return s.createErrorResult("Evaluation failed", err), nil, nil
	}

	if params.IncludeTrace {
		return s.jsonResult(resp)
	}
	return s.jsonResult(compact(resp))
}

func (s *Server) handleRelevantItems(ctx context.Context, req *mcp.CallToolRequest, params RelevantItemsParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolRelevantItems).Debug("Tool invoked")

	res, err := s.service.RelevantItems(ctx, &service.RelevanceRequest{
		SQ:        domain.FromAny(params.SQ),
		Diagnoses: params.Diagnoses,
	})
	if err != nil {
		return s.createErrorResult("Relevance analysis failed", err), nil, nil
	}
	return s.jsonResult(res)
}

func (s *Server) handleEvaluateRecord(ctx context.Context, req *mcp.CallToolRequest, params EvaluateRecordParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithFields(logrus.Fields{
		"tool":      ToolEvaluateRecord,
		"record_id": params.RecordID,
	}).Debug("Tool invoked")

	resp, err := s.service.EvaluateRecord(ctx, &service.RecordEvaluationRequest{
		RecordID:  params.RecordID,
		Diagnoses: params.Diagnoses,
	})
	if err != nil {
		return s.createErrorResult("Record evaluation failed", err), nil, nil
	}

	if params.IncludeTrace {
		return s.jsonResult(resp)
	}
	return s.jsonResult(compact(resp))
}

// jsonResult renders v as indented JSON text content
func (s *Server) jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return s.createErrorResult("Failed to encode result", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

// createErrorResult reports a tool-level failure to the client
func (s *Server) createErrorResult(message string, err error) *mcp.CallToolResult {
	s.logger.WithError(err).Warn(message)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("%s: %v", message, err)},
		},
		IsError: true,
	}
}
