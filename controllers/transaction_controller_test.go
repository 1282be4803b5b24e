package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/ardiansyahdp/konveksi-api/cache"
	"github.com/ardiansyahdp/konveksi-api/models"
	"github.com/ardiansyahdp/konveksi-api/services"
)

func newTransactionTestRouter(t *testing.T) (*gorm.DB, *TransactionController) {
	gin.SetMode(gin.TestMode)
	db := setupControllerTestDB(t)
	svc := services.NewTransactionService(db, cache.NewMemoryStore(cache.TTLFrequent, time.Minute))
	return db, NewTransactionController(svc)
}

func seedControllerTransaction(t *testing.T, db *gorm.DB, userID uint, orderID *uint, status models.PaymentStatus) *models.Transaction {
	t.Helper()
	ctrlSeq++
	txn := models.Transaction{
		UniqueID:      fmt.Sprintf("TRX-ctrl-%d", ctrlSeq),
		TotalHarga:    *models.NewRupiah(1500000),
		Status:        status,
		UserID:        userID,
		CustomOrderID: orderID,
	}
	if err := db.Create(&txn).Error; err != nil {
		t.Fatalf("Failed to seed transaction: %v", err)
	}
	return &txn
}

func TestCreateTransactionEndpoint(t *testing.T) {
	db, ctrl := newTransactionTestRouter(t)
	customer := createControllerUser(t, db, models.RoleCustomer)
	admin := createControllerUser(t, db, models.RoleAdmin)

	router := gin.New()
	router.POST("/transactions",
		asRequester(models.Requester{ID: admin.ID, Role: models.RoleAdmin}),
		ctrl.Create,
	)

	w := doJSON(router, http.MethodPost, "/transactions", map[string]interface{}{
		"total_harga": 450000,
		"user_id":     customer.ID,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "BELUM_BAYAR", data["status"])
	assert.Equal(t, float64(admin.ID), data["admin_id"], "The creating admin is recorded by default")
	assert.Contains(t, data["unique_id"], "TRX-")

	// missing total_harga
	w = doJSON(router, http.MethodPost, "/transactions", map[string]interface{}{
		"user_id": customer.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	errorData := parseResponse(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errorData["code"])
}

func TestBayarEndpoint(t *testing.T) {
	db, ctrl := newTransactionTestRouter(t)
	owner := createControllerUser(t, db, models.RoleCustomer)
	stranger := createControllerUser(t, db, models.RoleCustomer)
	txn := seedControllerTransaction(t, db, owner.ID, nil, models.PaymentBelumBayar)

	ownerRouter := gin.New()
	ownerRouter.POST("/transactions/:id/bayar",
		asRequester(models.Requester{ID: owner.ID, Role: models.RoleCustomer}),
		ctrl.Bayar,
	)

	// validation first: both proof fields are required
	w := doJSON(ownerRouter, http.MethodPost, fmt.Sprintf("/transactions/%d/bayar", txn.ID),
		map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	payload := map[string]interface{}{
		"file_screenshot": "uploads/bukti-pembayaran/bukti.jpg",
		"payment_method":  "TRANSFER_BANK",
		"keterangan":      "transfer dari BCA",
	}

	// a stranger may not submit proof on someone else's transaction
	strangerRouter := gin.New()
	strangerRouter.POST("/transactions/:id/bayar",
		asRequester(models.Requester{ID: stranger.ID, Role: models.RoleCustomer}),
		ctrl.Bayar,
	)
	w = doJSON(strangerRouter, http.MethodPost, fmt.Sprintf("/transactions/%d/bayar", txn.ID), payload)
	assert.Equal(t, http.StatusForbidden, w.Code)
	errorData := parseResponse(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "FORBIDDEN", errorData["code"])

	// the owner succeeds
	w = doJSON(ownerRouter, http.MethodPost, fmt.Sprintf("/transactions/%d/bayar", txn.ID), payload)
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "BELUM_BAYAR", data["status"], "Submission alone never confirms the payment")
	assert.Equal(t, "uploads/bukti-pembayaran/bukti.jpg", data["file_screenshot"])
}

func TestTerimaPembayaranEndpointCompletesOrder(t *testing.T) {
	db, ctrl := newTransactionTestRouter(t)
	customer := createControllerUser(t, db, models.RoleCustomer)
	admin := createControllerUser(t, db, models.RoleAdmin)
	order := seedControllerOrder(t, db, customer.ID, models.StatusPengerjaan)
	txn := seedControllerTransaction(t, db, customer.ID, &order.ID, models.PaymentBelumBayar)

	router := gin.New()
	router.POST("/transactions/:id/terima",
		asRequester(models.Requester{ID: admin.ID, Role: models.RoleAdmin}),
		ctrl.Terima,
	)

	w := doJSON(router, http.MethodPost, fmt.Sprintf("/transactions/%d/terima", txn.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "LUNAS", data["status"])

	var completed models.CustomOrder
	db.First(&completed, order.ID)
	assert.Equal(t, models.StatusSelesai, completed.Status, "Confirming the payment completes the linked order")

	// confirming twice conflicts
	w = doJSON(router, http.MethodPost, fmt.Sprintf("/transactions/%d/terima", txn.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTolakPembayaranEndpoint(t *testing.T) {
	db, ctrl := newTransactionTestRouter(t)
	customer := createControllerUser(t, db, models.RoleCustomer)
	admin := createControllerUser(t, db, models.RoleAdmin)
	txn := seedControllerTransaction(t, db, customer.ID, nil, models.PaymentBelumBayar)

	router := gin.New()
	router.POST("/transactions/:id/tolak",
		asRequester(models.Requester{ID: admin.ID, Role: models.RoleAdmin}),
		ctrl.Tolak,
	)

	// reason is mandatory
	w := doJSON(router, http.MethodPost, fmt.Sprintf("/transactions/%d/tolak", txn.ID),
		map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, fmt.Sprintf("/transactions/%d/tolak", txn.ID),
		map[string]interface{}{"alasan_ditolak": "bukti transfer buram"})
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "DITOLAK", data["status"])
	assert.Equal(t, "bukti transfer buram", data["alasan_ditolak"])
}

func TestResendEndpoint(t *testing.T) {
	db, ctrl := newTransactionTestRouter(t)
	owner := createControllerUser(t, db, models.RoleCustomer)
	rejected := seedControllerTransaction(t, db, owner.ID, nil, models.PaymentDitolak)
	unpaid := seedControllerTransaction(t, db, owner.ID, nil, models.PaymentBelumBayar)

	router := gin.New()
	router.POST("/transactions/:id/resend",
		asRequester(models.Requester{ID: owner.ID, Role: models.RoleCustomer}),
		ctrl.Resend,
	)

	payload := map[string]interface{}{
		"file_screenshot": "uploads/bukti-pembayaran/bukti-v2.jpg",
		"payment_method":  "QRIS",
	}

	w := doJSON(router, http.MethodPost, fmt.Sprintf("/transactions/%d/resend", rejected.ID), payload)
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "BELUM_BAYAR", data["status"])
	assert.Nil(t, data["alasan_ditolak"])

	// resending is only legal after a rejection
	w = doJSON(router, http.MethodPost, fmt.Sprintf("/transactions/%d/resend", unpaid.ID), payload)
	assert.Equal(t, http.StatusConflict, w.Code)
	errorData := parseResponse(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "CONFLICT", errorData["code"])
}

func TestListTransactionsEndpoint(t *testing.T) {
	db, ctrl := newTransactionTestRouter(t)
	customer := createControllerUser(t, db, models.RoleCustomer)
	admin := createControllerUser(t, db, models.RoleAdmin)
	seedControllerTransaction(t, db, customer.ID, nil, models.PaymentBelumBayar)
	seedControllerTransaction(t, db, customer.ID, nil, models.PaymentLunas)
	seedControllerTransaction(t, db, admin.ID, nil, models.PaymentBelumBayar)

	adminRouter := gin.New()
	adminRouter.GET("/transactions",
		asRequester(models.Requester{ID: admin.ID, Role: models.RoleAdmin}),
		ctrl.List,
	)

	w := doJSON(adminRouter, http.MethodGet, "/transactions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].([]interface{})
	assert.Len(t, data, 3)

	w = doJSON(adminRouter, http.MethodGet, "/transactions?status=LUNAS", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = parseResponse(t, w)["data"].([]interface{})
	assert.Len(t, data, 1)

	w = doJSON(adminRouter, http.MethodGet, fmt.Sprintf("/transactions?user_id=%d", customer.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = parseResponse(t, w)["data"].([]interface{})
	assert.Len(t, data, 2)

	customerRouter := gin.New()
	customerRouter.GET("/transactions",
		asRequester(models.Requester{ID: customer.ID, Role: models.RoleCustomer}),
		ctrl.List,
	)
	w = doJSON(customerRouter, http.MethodGet, "/transactions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = parseResponse(t, w)["data"].([]interface{})
	assert.Len(t, data, 2, "A customer only sees their own transactions")
}

func TestUpdateTransactionEndpoint(t *testing.T) {
	db, ctrl := newTransactionTestRouter(t)
	customer := createControllerUser(t, db, models.RoleCustomer)
	admin := createControllerUser(t, db, models.RoleAdmin)
	txn := seedControllerTransaction(t, db, customer.ID, nil, models.PaymentBelumBayar)

	router := gin.New()
	router.PATCH("/transactions/:id",
		asRequester(models.Requester{ID: admin.ID, Role: models.RoleAdmin}),
		ctrl.Update,
	)

	w := doJSON(router, http.MethodPatch, fmt.Sprintf("/transactions/%d", txn.ID),
		map[string]interface{}{"keterangan": "pelunasan tahap dua"})
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "pelunasan tahap dua", data["keterangan"])
}
