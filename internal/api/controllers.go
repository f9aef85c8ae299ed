package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"trading-gate/internal/governance"
	"trading-gate/internal/killswitch"
	"trading-gate/internal/order"
	"trading-gate/internal/pipeline"
	"trading-gate/internal/risk"
	"trading-gate/pkg/db"
)

// submitOrderRequest is the wire shape for POST /api/orders. ErrorPolicy
// is mandatory; the gate refuses to guess how governance blocks should
// surface.
type submitOrderRequest struct {
	Symbol        string  `json:"symbol"`
	Side          string  `json:"side"`
	Type          string  `json:"type"`
	Qty           float64 `json:"qty"`
	Price         float64 `json:"price"`
	TimeInForce   string  `json:"time_in_force"`
	Strategy      string  `json:"strategy"`
	Environment   string  `json:"environment"`
	ClientOrderID string  `json:"client_order_id"`
	ErrorPolicy   string  `json:"error_policy"` // "return" | "raise"
}

func (r submitOrderRequest) intent() order.Intent {
	return order.Intent{
		ClientOrderID: r.ClientOrderID,
		Symbol:        r.Symbol,
		Side:          order.Side(r.Side),
		Type:          order.OrderType(r.Type),
		Qty:           r.Qty,
		Price:         r.Price,
		TimeInForce:   r.TimeInForce,
		Strategy:      r.Strategy,
		Environment:   order.Environment(r.Environment),
		CreatedAt:     time.Now(),
	}
}

// submitOrder runs one intent through the gate.
func (s *Server) submitOrder(c *gin.Context) {
	var req submitOrderRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "INVALID_PAYLOAD",
			"error": "invalid request payload",
		})
		return
	}

	policy := pipeline.ParsePolicy(req.ErrorPolicy)
	res, err := s.Pipe.Submit(c.Request.Context(), req.intent(), policy)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoErrorPolicy) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":  "MISSING_ERROR_POLICY",
				"error": "error_policy must be \"return\" or \"raise\"",
			})
			return
		}
		var v *governance.ViolationError
		if errors.As(err, &v) {
			// Raise policy: the block carries both the populated result
			// and the violation.
			c.JSON(http.StatusForbidden, gin.H{
				"code":   "GOVERNANCE_VIOLATION",
				"error":  v.Error(),
				"result": res,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  "INTERNAL_ERROR",
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": res})
}

// getExecutions queries the audit trail.
func (s *Server) getExecutions(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	rows, err := s.DB.ListExecutions(c.Request.Context(), db.ExecutionFilter{
		Symbol:      c.Query("symbol"),
		Status:      c.Query("status"),
		Environment: c.Query("environment"),
		Limit:       limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  "INTERNAL_ERROR",
			"error": err.Error(),
		})
		return
	}

	counts, err := s.DB.CountExecutionsByStatus(c.Request.Context())
	if err != nil {
		counts = nil
	}
	c.JSON(http.StatusOK, gin.H{
		"executions": rows,
		"counts":     counts,
	})
}

// getExecution returns one audit row by run id.
func (s *Server) getExecution(c *gin.Context) {
	row, err := s.DB.GetExecution(c.Request.Context(), c.Param("run_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":  "NOT_FOUND",
			"error": "no execution with that run id",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"execution": row})
}

// getKillSwitch returns the switch snapshot with live cooldown position.
func (s *Server) getKillSwitch(c *gin.Context) {
	snap, err := s.Switch.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  "INTERNAL_ERROR",
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) triggerKillSwitch(c *gin.Context) {
	var req struct {
		Reason      string `json:"reason"`
		TriggeredBy string `json:"triggered_by"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "INVALID_PAYLOAD",
			"error": "invalid request payload",
		})
		return
	}
	if req.TriggeredBy == "" {
		req.TriggeredBy = CurrentUserID(c)
	}

	rec, err := s.Switch.Trigger(c.Request.Context(), req.Reason, req.TriggeredBy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  "INTERNAL_ERROR",
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) recoverKillSwitch(c *gin.Context) {
	var req struct {
		ApprovedBy   string `json:"approved_by"`
		ApprovalCode string `json:"approval_code"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "INVALID_PAYLOAD",
			"error": "invalid request payload",
		})
		return
	}

	rec, err := s.Switch.RequestRecovery(c.Request.Context(), req.ApprovedBy, req.ApprovalCode)
	if err != nil {
		s.killSwitchError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) completeRecovery(c *gin.Context) {
	rec, err := s.Switch.CompleteRecovery(c.Request.Context())
	if err != nil {
		s.killSwitchError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// killSwitchError maps refusals to 409 and everything else to 500.
func (s *Server) killSwitchError(c *gin.Context, err error) {
	var refused *killswitch.RecoveryNotAllowedError
	if errors.As(err, &refused) {
		c.JSON(http.StatusConflict, gin.H{
			"code":  "RECOVERY_NOT_ALLOWED",
			"error": refused.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":  "INTERNAL_ERROR",
		"error": err.Error(),
	})
}

func (s *Server) getKillSwitchHistory(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	history, err := s.Switch.History(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  "INTERNAL_ERROR",
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// getGovernance lists the governed capabilities and their lock state.
func (s *Server) getGovernance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"locks": s.Governance.Snapshot()})
}

// previewRisk grades an intent against current exposure without touching
// the gate or the books. Dry run for strategy authors.
func (s *Server) previewRisk(c *gin.Context) {
	var req submitOrderRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "INVALID_PAYLOAD",
			"error": "invalid request payload",
		})
		return
	}

	var exposure risk.Exposure
	if s.Books != nil {
		exposure = s.Books.Snapshot(req.Symbol)
	}
	assessment := risk.Evaluate(risk.OrderInput{
		Symbol: req.Symbol,
		Side:   req.Side,
		Qty:    req.Qty,
		Price:  req.Price,
	}, exposure, s.Pipe.RiskConfig)

	c.JSON(http.StatusOK, gin.H{
		"assessment": assessment,
		"exposure":   exposure,
	})
}

func (s *Server) getMetrics(c *gin.Context) {
	if s.Metrics == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, s.Metrics.GetSnapshot())
}

func (s *Server) getSystemStatus(c *gin.Context) {
	snap, err := s.Switch.Status(c.Request.Context())
	status := gin.H{
		"meta": s.Meta,
	}
	if err == nil {
		status["kill_switch"] = snap
	}
	c.JSON(http.StatusOK, status)
}
