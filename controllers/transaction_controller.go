package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ardiansyahdp/konveksi-api/middleware"
	"github.com/ardiansyahdp/konveksi-api/models"
	"github.com/ardiansyahdp/konveksi-api/services"
)

// TransactionController exposes the payment workflow over HTTP.
type TransactionController struct {
	transactions *services.TransactionService
}

// NewTransactionController creates a TransactionController backed by the
// given service.
func NewTransactionController(transactions *services.TransactionService) *TransactionController {
	return &TransactionController{transactions: transactions}
}

// Create handles POST /api/v1/transactions - direct administrative creation
// of a payment record not tied to a custom order.
func (tc *TransactionController) Create(c *gin.Context) {
	requester, err := middleware.GetRequester(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req services.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}
	if req.AdminID == nil {
		adminID := requester.ID
		req.AdminID = &adminID
	}

	txn, err := tc.transactions.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    txn,
	})
}

// List handles GET /api/v1/transactions with search, filters, pagination and
// sorting. Non-elevated requesters only see their own transactions.
func (tc *TransactionController) List(c *gin.Context) {
	requester, err := middleware.GetRequester(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	params := services.ListTransactionsParams{
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	params.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	params.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "25"))

	if v := c.Query("status"); v != "" {
		status := models.PaymentStatus(v)
		params.Status = &status
	}
	if v := c.Query("payment_method"); v != "" {
		method := models.PaymentMethod(v)
		params.PaymentMethod = &method
	}
	if v := c.Query("user_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			userID := uint(id)
			params.UserID = &userID
		}
	}
	if v := c.Query("admin_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			adminID := uint(id)
			params.AdminID = &adminID
		}
	}

	txns, err := tc.transactions.List(params, requester)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    txns,
	})
}

// GetByID handles GET /api/v1/transactions/:id
func (tc *TransactionController) GetByID(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	txn, err := tc.transactions.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    txn,
	})
}

// Update handles PATCH /api/v1/transactions/:id (admin only)
func (tc *TransactionController) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req services.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}

	txn, err := tc.transactions.Update(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    txn,
	})
}

// Bayar handles POST /api/v1/transactions/:id/bayar - the owning customer
// submits proof of payment.
func (tc *TransactionController) Bayar(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	requester, err := middleware.GetRequester(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req services.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}

	txn, err := tc.transactions.SubmitPayment(id, &req, requester.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    txn,
	})
}

// Terima handles POST /api/v1/transactions/:id/terima - an admin confirms the
// payment; a linked custom order is completed in the same unit of work.
func (tc *TransactionController) Terima(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	requester, err := middleware.GetRequester(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	txn, err := tc.transactions.AcceptPayment(id, requester.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    txn,
	})
}

type tolakPembayaranRequest struct {
	AlasanDitolak string `json:"alasan_ditolak"`
}

// Tolak handles POST /api/v1/transactions/:id/tolak - an admin rejects the
// payment with a mandatory reason.
func (tc *TransactionController) Tolak(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	requester, err := middleware.GetRequester(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req tolakPembayaranRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}

	txn, err := tc.transactions.RejectPayment(id, requester.ID, req.AlasanDitolak)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    txn,
	})
}

// Resend handles POST /api/v1/transactions/:id/resend - the owning customer
// resubmits proof after a rejection.
func (tc *TransactionController) Resend(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	requester, err := middleware.GetRequester(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req services.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}

	txn, err := tc.transactions.ResendPayment(id, &req, requester.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    txn,
	})
}

// SoftDelete handles DELETE /api/v1/transactions/:id
func (tc *TransactionController) SoftDelete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := tc.transactions.SoftDelete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Transaction deleted",
	})
}

// HardDelete handles DELETE /api/v1/transactions/:id/permanent
func (tc *TransactionController) HardDelete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := tc.transactions.HardDelete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Transaction permanently deleted",
	})
}
