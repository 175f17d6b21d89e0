package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dctmd-mcp-server/internal/domain"
	"github.com/dctmd-mcp-server/internal/service"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   s.version,
		"diagnoses": len(s.service.ListDiagnoses()),
	})
}

func (s *Server) handleListDiagnoses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"diagnoses": s.service.ListDiagnoses()})
}

// handleEvaluate evaluates an inline patient data document
func (s *Server) handleEvaluate(c *gin.Context) {
	var req service.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, invalidBody(err))
		return
	}

	resp, err := s.service.Evaluate(c.Request.Context(), &req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleRelevance reports which examination items still matter for the given answers
func (s *Server) handleRelevance(c *gin.Context) {
	var req service.RelevanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, invalidBody(err))
		return
	}

	resp, err := s.service.RelevantItems(c.Request.Context(), &req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleStoreRecord stores the request body as the document of record :id
func (s *Server) handleStoreRecord(c *gin.Context) {
	var data domain.Value
	if err := c.ShouldBindJSON(&data); err != nil {
		s.writeError(c, invalidBody(err))
		return
	}

	record, err := s.service.StoreRecord(c.Request.Context(), &service.StoreRecordRequest{
		RecordID: c.Param("id"),
		Data:     data,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         record.ID,
		"created_at": record.CreatedAt,
		"updated_at": record.UpdatedAt,
	})
}

// handleRecordEvaluation evaluates a stored document; ?diagnosis= may repeat
func (s *Server) handleRecordEvaluation(c *gin.Context) {
	resp, err := s.service.EvaluateRecord(c.Request.Context(), &service.RecordEvaluationRequest{
		RecordID:  c.Param("id"),
		Diagnoses: c.QueryArray("diagnosis"),
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
