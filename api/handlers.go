package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fixsecurity/fixsentry/internal/fix"
)

type ingestRequest struct {
	Message string `json:"message" validate:"required"`
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "fixsentry",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ingestMessage accepts one raw FIX message, runs it through the full
// pipeline and returns the stored record.
func (s *Server) ingestMessage(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	result, err := s.service.Process(c.Request.Context(), req.Message)
	if err != nil {
		var decodeErr *fix.DecodeError
		if errors.As(err, &decodeErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": decodeErr.Detail,
				"kind":  string(decodeErr.Kind),
			})
			return
		}
		s.logger.Error("message processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}

	rec := s.history.Add(result)
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) listMessages(c *gin.Context) {
	sessionID := c.Query("session_id")
	msgType := c.Query("msg_type")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 || limit > 1000 {
		limit = 100
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	records := s.history.Filter(sessionID, msgType)
	total := len(records)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": records[offset:end],
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

func (s *Server) getMessage(c *gin.Context) {
	rec, ok := s.history.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// listSessions returns the behavioral baseline for every tracked session.
func (s *Server) listSessions(c *gin.Context) {
	snapshots := s.baselines.Snapshots()
	c.JSON(http.StatusOK, gin.H{
		"sessions": snapshots,
		"total":    len(snapshots),
	})
}

// complianceStatus summarizes rule outcomes across the retained history.
func (s *Server) complianceStatus(c *gin.Context) {
	records := s.history.Filter("", "")

	evaluated := 0
	compliant := 0
	byRule := map[string]int{}
	for _, rec := range records {
		if len(rec.Compliance.Evaluations) == 0 {
			continue
		}
		evaluated++
		if rec.Compliance.Compliant {
			compliant++
		}
		for _, ev := range rec.Compliance.Evaluations {
			if !ev.Compliant {
				byRule[ev.RuleID]++
			}
		}
	}

	rate := 1.0
	if evaluated > 0 {
		rate = float64(compliant) / float64(evaluated)
	}

	c.JSON(http.StatusOK, gin.H{
		"evaluated_messages": evaluated,
		"compliant_messages": compliant,
		"compliance_rate":    rate,
		"violations_by_rule": byRule,
	})
}

// platformStats reports aggregate counts across history and sessions.
func (s *Server) platformStats(c *gin.Context) {
	records := s.history.Filter("", "")

	byType := map[string]int{}
	anomalous := 0
	for _, rec := range records {
		byType[rec.Message.MsgType]++
		if rec.Anomalies.HasAnomalies {
			anomalous++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_messages":     len(records),
		"messages_by_type":   byType,
		"anomalous_messages": anomalous,
		"tracked_sessions":   s.baselines.Len(),
	})
}
