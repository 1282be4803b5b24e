package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ardiansyahdp/konveksi-api/middleware"
	"github.com/ardiansyahdp/konveksi-api/models"
	"github.com/ardiansyahdp/konveksi-api/services"
)

// OrderController exposes the custom-order lifecycle over HTTP.
type OrderController struct {
	orders *services.OrderService
}

// NewOrderController creates an OrderController backed by the given service.
func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Create handles POST /api/v1/custom-orders - submits a new custom order.
// The owning customer is always the authenticated requester.
func (oc *OrderController) Create(c *gin.Context) {
	requester, err := middleware.GetRequester(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}
	req.UserID = requester.ID

	order, err := oc.orders.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// List handles GET /api/v1/custom-orders with search, pagination and sorting.
// Non-elevated requesters only see their own orders.
func (oc *OrderController) List(c *gin.Context) {
	requester, err := middleware.GetRequester(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	params := services.ListOrdersParams{
		Q:         c.Query("q"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	params.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	params.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "25"))

	orders, err := oc.orders.List(params, requester)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetByID handles GET /api/v1/custom-orders/:id
func (oc *OrderController) GetByID(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, err := oc.orders.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// Update handles PATCH /api/v1/custom-orders/:id - partial update of
// descriptive fields (admin only; status never moves through here).
func (oc *OrderController) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req services.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}

	order, err := oc.orders.Update(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// terimaRequest is intentionally empty; the accepting admin comes from the
// authenticated requester, not the body.
type tolakRequest struct {
	AlasanDitolak string `json:"alasan_ditolak"`
}

type dealRequest struct {
	TotalHarga *models.Rupiah `json:"total_harga"`
}

type batalRequest struct {
	AlasanDitolak *string `json:"alasan_ditolak"`
}

// Terima handles POST /api/v1/custom-orders/:id/terima - accepts a pending
// order, moving it into negotiation.
func (oc *OrderController) Terima(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	requester, err := middleware.GetRequester(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	order, err := oc.orders.Accept(id, requester.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// Tolak handles POST /api/v1/custom-orders/:id/tolak - rejects an order with
// a mandatory reason.
func (oc *OrderController) Tolak(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	requester, err := middleware.GetRequester(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req tolakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}

	order, err := oc.orders.Reject(id, requester.ID, req.AlasanDitolak)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// Deal handles POST /api/v1/custom-orders/:id/deal - finalizes the negotiated
// price, moves the order into production and creates its payment record.
func (oc *OrderController) Deal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	requester, err := middleware.GetRequester(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req dealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}

	order, err := oc.orders.Deal(id, requester.ID, req.TotalHarga)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// Batal handles POST /api/v1/custom-orders/:id/batal - cancels a non-terminal
// order; the reason is optional.
func (oc *OrderController) Batal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	requester, err := middleware.GetRequester(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req batalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}

	order, err := oc.orders.Cancel(id, requester.ID, req.AlasanDitolak)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// SoftDelete handles DELETE /api/v1/custom-orders/:id
func (oc *OrderController) SoftDelete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := oc.orders.SoftDelete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Custom order deleted",
	})
}

// HardDelete handles DELETE /api/v1/custom-orders/:id/permanent
func (oc *OrderController) HardDelete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := oc.orders.HardDelete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Custom order permanently deleted",
	})
}
