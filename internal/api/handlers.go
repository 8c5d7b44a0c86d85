package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taptosell/marketplace-workflow/internal/application/engine"
	"github.com/taptosell/marketplace-workflow/internal/application/service"
	"github.com/taptosell/marketplace-workflow/internal/domain/actor"
	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	engine     *engine.Engine
	queue      service.ApprovalQueueService
	promotion  service.PromotionService
	settings   service.SettingsService
	records    service.RecordService
	submission service.SubmissionService
	logger     *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	eng *engine.Engine,
	queue service.ApprovalQueueService,
	promotion service.PromotionService,
	settings service.SettingsService,
	records service.RecordService,
	submission service.SubmissionService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		engine:     eng,
		queue:      queue,
		promotion:  promotion,
		settings:   settings,
		records:    records,
		submission: submission,
		logger:     logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// TransitionRequest is the body of a transition call
type TransitionRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

// CreateRecordRequest is the body for creating products and inventory items
type CreateRecordRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	SKU         string  `json:"sku"`
	Price       float64 `json:"price" binding:"required"`
	Stock       int     `json:"stock"`
}

// CreateWithdrawalRequest is the body for filing a withdrawal request
type CreateWithdrawalRequest struct {
	Amount      float64 `json:"amount" binding:"required"`
	BankDetails string  `json:"bank_details" binding:"required"`
}

// CreateAppealRequest is the body for filing a price appeal
type CreateAppealRequest struct {
	ProductID int64   `json:"product_id" binding:"required"`
	NewPrice  float64 `json:"new_price" binding:"required"`
}

// UpdateSettingsRequest is the body of a settings update
type UpdateSettingsRequest map[string]string

func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, Response{
		Success: false,
		Error:   err.Error(),
		Code:    errorCode(err),
	})
}

func (h *Handlers) respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   msg,
		Code:    "bad_request",
	})
}

func parseKindParam(c *gin.Context) (workflow.Kind, bool) {
	kind, ok := workflow.ParseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "unknown record kind: " + c.Param("kind"),
			Code:    "bad_request",
		})
		return "", false
	}
	return kind, true
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid record ID",
			Code:    "bad_request",
		})
		return 0, false
	}
	return id, true
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// ListQueue handles GET /api/queue/:kind
func (h *Handlers) ListQueue(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}

	records, err := h.queue.ListAwaiting(c.Request.Context(), kind, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    records,
	})
}

// ExportQueue handles GET /api/queue/:kind/export
func (h *Handlers) ExportQueue(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}

	data, err := h.queue.ExportAwaiting(c.Request.Context(), kind, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := "queue_" + kind.String() + "_" + time.Now().UTC().Format("20060102T150405Z") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// Transition handles POST /api/records/:kind/:id/transition
func (h *Handlers) Transition(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, "invalid request body: action is required")
		return
	}

	record, err := h.engine.Apply(c.Request.Context(), engine.ApplyRequest{
		Kind:   kind,
		ID:     id,
		Action: workflow.Action(req.Action),
		Actor:  actorFrom(c),
		Reason: req.Reason,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    record,
	})
}

// GetRecord handles GET /api/records/:kind/:id
func (h *Handlers) GetRecord(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	record, err := h.records.Get(c.Request.Context(), kind, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    record,
	})
}

// GetRecordHistory handles GET /api/records/:kind/:id/history
func (h *Handlers) GetRecordHistory(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	history, err := h.records.History(c.Request.Context(), kind, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    history,
	})
}

// DeleteRecord handles DELETE /api/records/:kind/:id
func (h *Handlers) DeleteRecord(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.records.DeleteDraft(c.Request.Context(), kind, id, actorFrom(c)); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// PromoteItem handles POST /api/inventory/:id/promote
func (h *Handlers) PromoteItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	productID, err := h.promotion.Promote(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"product_id": productID},
	})
}

// CreateProduct handles POST /api/products
func (h *Handlers) CreateProduct(c *gin.Context) {
	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	product, err := h.submission.CreateProduct(c.Request.Context(), service.ProductDraft{
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Price:       req.Price,
		Stock:       req.Stock,
	}, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    product,
	})
}

// CreateInventoryItem handles POST /api/inventory
func (h *Handlers) CreateInventoryItem(c *gin.Context) {
	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	item, err := h.submission.CreateInventoryItem(c.Request.Context(), service.ProductDraft{
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Price:       req.Price,
		Stock:       req.Stock,
	}, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    item,
	})
}

// CreateWithdrawal handles POST /api/withdrawals
func (h *Handlers) CreateWithdrawal(c *gin.Context) {
	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	withdrawal, err := h.submission.CreateWithdrawal(c.Request.Context(), req.Amount, req.BankDetails, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    withdrawal,
	})
}

// CreateAppeal handles POST /api/appeals
func (h *Handlers) CreateAppeal(c *gin.Context) {
	var req CreateAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	appeal, err := h.submission.CreatePriceAppeal(c.Request.Context(), req.ProductID, req.NewPrice, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    appeal,
	})
}

// GetSettings handles GET /api/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	act := actorFrom(c)
	if act.Role != actor.RoleAdministrator {
		h.respondError(c, fmt.Errorf("%w: role %s cannot read settings", workflow.ErrForbidden, act.Role))
		return
	}

	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    settings,
	})
}

// UpdateSettings handles PATCH /api/settings
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, "invalid request body")
		return
	}
	if len(req) == 0 {
		h.respondBadRequest(c, "at least one setting is required")
		return
	}

	settings, err := h.settings.Update(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    settings,
	})
}
