package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"inventory-service/internal/apperrors"
	"inventory-service/internal/service"
	"inventory-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	inventory  *service.InventoryService
	orders     *service.PurchaseOrderService
	masterData *service.MasterDataService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	inventory *service.InventoryService,
	orders *service.PurchaseOrderService,
	masterData *service.MasterDataService,
) *Handler {
	return &Handler{
		inventory:  inventory,
		orders:     orders,
		masterData: masterData,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/movements", h.recordMovement)
		v1.GET("/movements", h.listMovements)
		v1.GET("/stock", h.getSnapshot)
		v1.GET("/stock/low", h.getLowStock)

		v1.POST("/purchase-orders", h.createPurchaseOrder)
		v1.GET("/purchase-orders", h.listPurchaseOrders)
		v1.GET("/purchase-orders/:id", h.getPurchaseOrder)
		v1.POST("/purchase-orders/:id/status", h.transitionPurchaseOrder)
		v1.POST("/purchase-orders/:id/receive", h.receiveItems)

		v1.POST("/vendors", h.createVendor)
		v1.GET("/vendors", h.listVendors)
		v1.GET("/vendors/:id", h.getVendor)
		v1.POST("/vendors/:id/deactivate", h.deactivateVendor)
		v1.POST("/vendors/:id/reactivate", h.reactivateVendor)

		v1.POST("/items", h.createItem)
		v1.GET("/items", h.listItems)
		v1.GET("/items/:id", h.getItem)
		v1.POST("/items/:id/deactivate", h.deactivateItem)
		v1.POST("/items/:id/reactivate", h.reactivateItem)

		v1.GET("/locations", h.listLocations)
	}
}

// respondError maps the domain error taxonomy onto HTTP statuses with a
// stable machine-readable code; the caller renders it however it wishes.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.Persistence("internal error", err)
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperrors.CodeValidation:
		status = http.StatusBadRequest
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeInsufficientStock,
		apperrors.CodeInvalidTransition,
		apperrors.CodeUniquenessConflict:
		status = http.StatusConflict
	case apperrors.CodePersistence:
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"error": gin.H{
			"code":      appErr.Code,
			"message":   appErr.Message,
			"retryable": appErr.Retryable,
		},
	})
}

func actor(c *gin.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	if header := c.GetHeader("X-Actor"); header != "" {
		return header
	}
	return "system"
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperrors.Validation("invalid id: %s", c.Param("id")))
		return 0, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) int64 {
	id, _ := strconv.ParseInt(c.Query(name), 10, 64)
	return id
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// recordMovement appends a stock movement
func (h *Handler) recordMovement(c *gin.Context) {
	var req service.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("invalid request body: %v", err))
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}
	req.RecordedBy = actor(c, req.RecordedBy)

	resp, err := h.inventory.RecordMovement(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// listMovements returns ledger history
func (h *Handler) listMovements(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	movements, err := h.inventory.ListMovements(c.Request.Context(),
		queryID(c, "item_id"), queryID(c, "location_id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movements": movements})
}

// getSnapshot returns the current stock for an (item, location) pair
func (h *Handler) getSnapshot(c *gin.Context) {
	itemID := queryID(c, "item_id")
	locationID := queryID(c, "location_id")
	if itemID <= 0 || locationID <= 0 {
		respondError(c, apperrors.Validation("item_id and location_id are required"))
		return
	}

	snap, err := h.inventory.GetSnapshot(c.Request.Context(), itemID, locationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// getLowStock returns snapshots at or under their reorder point
func (h *Handler) getLowStock(c *gin.Context) {
	entries, err := h.inventory.GetLowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// createPurchaseOrder creates a draft purchase order
func (h *Handler) createPurchaseOrder(c *gin.Context) {
	var req service.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("invalid request body: %v", err))
		return
	}
	req.CreatedBy = actor(c, req.CreatedBy)

	resp, err := h.orders.CreatePurchaseOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// listPurchaseOrders returns order headers
func (h *Handler) listPurchaseOrders(c *gin.Context) {
	orders, err := h.orders.ListPurchaseOrders(c.Request.Context(),
		c.Query("status"), queryID(c, "vendor_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// getPurchaseOrder returns one order with its lines
func (h *Handler) getPurchaseOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	resp, err := h.orders.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// transitionPurchaseOrder applies an explicit status transition
func (h *Handler) transitionPurchaseOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("invalid request body: %v", err))
		return
	}

	po, err := h.orders.Transition(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

// receiveItems records a delivery against a purchase order
func (h *Handler) receiveItems(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.ReceiveItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("invalid request body: %v", err))
		return
	}
	req.ReceivedBy = actor(c, req.ReceivedBy)

	result, err := h.orders.ReceiveItems(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":     result.Order,
		"items":     result.Lines,
		"movements": result.Movements,
		"completed": result.Completed,
	})
}

// createVendor registers a vendor
func (h *Handler) createVendor(c *gin.Context) {
	var req service.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("invalid request body: %v", err))
		return
	}

	vendor, err := h.masterData.CreateVendor(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

// listVendors returns vendors, active only unless include_inactive=true
func (h *Handler) listVendors(c *gin.Context) {
	vendors, err := h.masterData.ListVendors(c.Request.Context(),
		c.Query("include_inactive") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendors": vendors})
}

// getVendor returns one vendor, resolving deactivated vendors too
func (h *Handler) getVendor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	vendor, err := h.masterData.GetVendor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func (h *Handler) deactivateVendor(c *gin.Context) {
	h.setVendorActive(c, false)
}

func (h *Handler) reactivateVendor(c *gin.Context) {
	h.setVendorActive(c, true)
}

func (h *Handler) setVendorActive(c *gin.Context, active bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	vendor, err := h.masterData.SetVendorActive(c.Request.Context(), id, active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

// createItem adds a catalog item
func (h *Handler) createItem(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("invalid request body: %v", err))
		return
	}

	item, err := h.masterData.CreateItem(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// listItems returns catalog items, active only unless include_inactive=true
func (h *Handler) listItems(c *gin.Context) {
	items, err := h.masterData.ListItems(c.Request.Context(),
		c.Query("include_inactive") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// getItem returns one item, resolving retired items too
func (h *Handler) getItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := h.masterData.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) deactivateItem(c *gin.Context) {
	h.setItemActive(c, false)
}

func (h *Handler) reactivateItem(c *gin.Context) {
	h.setItemActive(c, true)
}

func (h *Handler) setItemActive(c *gin.Context, active bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := h.masterData.SetItemActive(c.Request.Context(), id, active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// listLocations returns the externally provisioned locations
func (h *Handler) listLocations(c *gin.Context) {
	locations, err := h.masterData.ListLocations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
