package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ardiansyahdp/konveksi-api/cache"
	"github.com/ardiansyahdp/konveksi-api/middleware"
	"github.com/ardiansyahdp/konveksi-api/models"
	"github.com/ardiansyahdp/konveksi-api/services"
)

func setupControllerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.CustomOrder{}, &models.Transaction{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// asRequester stands in for the JWT validation and profile lookup chain.
func asRequester(r models.Requester) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetRequester(c, r)
		c.Next()
	}
}

func newOrderTestRouter(t *testing.T) (*gorm.DB, *OrderController) {
	gin.SetMode(gin.TestMode)
	db := setupControllerTestDB(t)
	svc := services.NewOrderService(db, cache.NewMemoryStore(cache.TTLFrequent, time.Minute), services.NewMockNotifier())
	return db, NewOrderController(svc)
}

var ctrlSeq int

func createControllerUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	ctrlSeq++
	user := models.User{
		Auth0ID: fmt.Sprintf("auth0|%s-%d", role, ctrlSeq),
		Name:    fmt.Sprintf("%s %d", role, ctrlSeq),
		Email:   fmt.Sprintf("%s%d@example.com", role, ctrlSeq),
		Role:    role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}

func seedControllerOrder(t *testing.T, db *gorm.DB, userID uint, status models.OrderStatus) *models.CustomOrder {
	t.Helper()
	ctrlSeq++
	materialID := uint(1)
	modelBajuID := uint(2)
	order := models.CustomOrder{
		UniqueID:      fmt.Sprintf("CSO-ctrl-%d", ctrlSeq),
		NamaPemesanan: "Seragam Kantor",
		Ukuran:        models.UkuranLarge,
		JumlahBarang:  12,
		Status:        status,
		MaterialID:    &materialID,
		ModelBajuID:   &modelBajuID,
		UserID:        userID,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	return &order
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response body %q: %v", w.Body.String(), err)
	}
	return response
}

func TestCreateCustomOrderEndpoint(t *testing.T) {
	db, ctrl := newOrderTestRouter(t)
	customer := createControllerUser(t, db, models.RoleCustomer)

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name: "Successfully create order",
			requestBody: map[string]interface{}{
				"nama_pemesanan": "Kemeja Batik Seragam",
				"ukuran":         "medium",
				"jumlah_barang":  24,
				"warna":          "biru navy",
				"material_id":    3,
				"model_baju_id":  5,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.True(t, response["success"].(bool))
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "Kemeja Batik Seragam", data["nama_pemesanan"])
				assert.Equal(t, "PENDING", data["status"])
				assert.Equal(t, float64(customer.ID), data["user_id"], "Owner is always the requester")
				assert.Contains(t, data["unique_id"], "CSO-")
				assert.Nil(t, data["total_harga"])
			},
		},
		{
			name: "Owner cannot be overridden through the body",
			requestBody: map[string]interface{}{
				"nama_pemesanan": "Kemeja Batik Seragam",
				"ukuran":         "medium",
				"jumlah_barang":  24,
				"material_id":    3,
				"model_baju_id":  5,
				"user_id":        9999,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, float64(customer.ID), data["user_id"])
			},
		},
		{
			name: "Fail with missing fields",
			requestBody: map[string]interface{}{
				"ukuran": "medium",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				errorData := response["error"].(map[string]interface{})
				details := errorData["details"].([]interface{})
				assert.GreaterOrEqual(t, len(details), 3, "Every violated field should be reported")
			},
		},
		{
			name: "Fail with unknown ukuran",
			requestBody: map[string]interface{}{
				"nama_pemesanan": "Kemeja Batik Seragam",
				"ukuran":         "XXL",
				"jumlah_barang":  24,
				"material_id":    3,
				"model_baju_id":  5,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with negative jumlah_barang",
			requestBody: map[string]interface{}{
				"nama_pemesanan": "Kemeja Batik Seragam",
				"ukuran":         "medium",
				"jumlah_barang":  -1,
				"material_id":    3,
				"model_baju_id":  5,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/custom-orders",
				asRequester(models.Requester{ID: customer.ID, Role: models.RoleCustomer}),
				ctrl.Create,
			)

			w := doJSON(router, http.MethodPost, "/custom-orders", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, w.Code)

			response := parseResponse(t, w)
			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestOrderLifecycleEndpoints(t *testing.T) {
	db, ctrl := newOrderTestRouter(t)
	customer := createControllerUser(t, db, models.RoleCustomer)
	admin := createControllerUser(t, db, models.RoleAdmin)

	router := gin.New()
	group := router.Group("", asRequester(models.Requester{ID: admin.ID, Role: models.RoleAdmin}))
	group.POST("/custom-orders/:id/terima", ctrl.Terima)
	group.POST("/custom-orders/:id/tolak", ctrl.Tolak)
	group.POST("/custom-orders/:id/deal", ctrl.Deal)
	group.POST("/custom-orders/:id/batal", ctrl.Batal)

	order := seedControllerOrder(t, db, customer.ID, models.StatusPending)

	// terima: PENDING -> NEGOSIASI
	w := doJSON(router, http.MethodPost, fmt.Sprintf("/custom-orders/%d/terima", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "NEGOSIASI", data["status"])
	assert.Equal(t, float64(admin.ID), data["admin_id"])

	// terima again: 409
	w = doJSON(router, http.MethodPost, fmt.Sprintf("/custom-orders/%d/terima", order.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	errorData := parseResponse(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "CONFLICT", errorData["code"])

	// deal: NEGOSIASI -> PENGERJAAN, amount above float53 precision
	w = doJSON(router, http.MethodPost, fmt.Sprintf("/custom-orders/%d/deal", order.ID),
		json.RawMessage(`{"total_harga":9007199254740993}`))
	assert.Equal(t, http.StatusOK, w.Code)
	data = parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "PENGERJAAN", data["status"])
	assert.Equal(t, json.Number("9007199254740993"), jsonNumber(t, w, "total_harga"),
		"Large amounts must survive the JSON round trip")

	// the deal spawned one unpaid transaction
	var txns []models.Transaction
	db.Where("custom_order_id = ?", order.ID).Find(&txns)
	assert.Len(t, txns, 1)
	assert.Equal(t, models.PaymentBelumBayar, txns[0].Status)
	assert.Equal(t, "9007199254740993", txns[0].TotalHarga.String())

	// batal: PENGERJAAN -> DIBATALKAN
	w = doJSON(router, http.MethodPost, fmt.Sprintf("/custom-orders/%d/batal", order.ID),
		map[string]interface{}{"alasan_ditolak": "pelanggan membatalkan"})
	assert.Equal(t, http.StatusOK, w.Code)
	data = parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "DIBATALKAN", data["status"])

	// tolak after terminal: 409
	w = doJSON(router, http.MethodPost, fmt.Sprintf("/custom-orders/%d/tolak", order.ID),
		map[string]interface{}{"alasan_ditolak": "terlambat"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

// jsonNumber re-parses the recorded body with UseNumber to read a numeric
// field without float64 truncation.
func jsonNumber(t *testing.T, w *httptest.ResponseRecorder, field string) json.Number {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(w.Body.Bytes()))
	dec.UseNumber()
	var response map[string]interface{}
	if err := dec.Decode(&response); err != nil {
		t.Fatalf("Failed to parse response body: %v", err)
	}
	data := response["data"].(map[string]interface{})
	num, ok := data[field].(json.Number)
	if !ok {
		t.Fatalf("Field %s is %T, expected a JSON number", field, data[field])
	}
	return num
}

func TestTolakOrderEndpointRequiresReason(t *testing.T) {
	db, ctrl := newOrderTestRouter(t)
	customer := createControllerUser(t, db, models.RoleCustomer)
	admin := createControllerUser(t, db, models.RoleAdmin)
	order := seedControllerOrder(t, db, customer.ID, models.StatusPending)

	router := gin.New()
	router.POST("/custom-orders/:id/tolak",
		asRequester(models.Requester{ID: admin.ID, Role: models.RoleAdmin}),
		ctrl.Tolak,
	)

	w := doJSON(router, http.MethodPost, fmt.Sprintf("/custom-orders/%d/tolak", order.ID),
		map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	errorData := parseResponse(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errorData["code"])
}

func TestGetCustomOrderEndpoint(t *testing.T) {
	db, ctrl := newOrderTestRouter(t)
	customer := createControllerUser(t, db, models.RoleCustomer)
	order := seedControllerOrder(t, db, customer.ID, models.StatusPending)

	router := gin.New()
	router.GET("/custom-orders/:id",
		asRequester(models.Requester{ID: customer.ID, Role: models.RoleCustomer}),
		ctrl.GetByID,
	)

	w := doJSON(router, http.MethodGet, fmt.Sprintf("/custom-orders/%d", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, order.UniqueID, data["unique_id"])

	w = doJSON(router, http.MethodGet, "/custom-orders/99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	errorData := parseResponse(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errorData["code"])

	w = doJSON(router, http.MethodGet, "/custom-orders/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCustomOrdersEndpointScoping(t *testing.T) {
	db, ctrl := newOrderTestRouter(t)
	alice := createControllerUser(t, db, models.RoleCustomer)
	admin := createControllerUser(t, db, models.RoleAdmin)
	seedControllerOrder(t, db, alice.ID, models.StatusPending)
	seedControllerOrder(t, db, admin.ID, models.StatusPending)

	customerRouter := gin.New()
	customerRouter.GET("/custom-orders",
		asRequester(models.Requester{ID: alice.ID, Role: models.RoleCustomer}),
		ctrl.List,
	)
	w := doJSON(customerRouter, http.MethodGet, "/custom-orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].([]interface{})
	assert.Len(t, data, 1, "A customer only sees their own orders")

	adminRouter := gin.New()
	adminRouter.GET("/custom-orders",
		asRequester(models.Requester{ID: admin.ID, Role: models.RoleAdmin}),
		ctrl.List,
	)
	w = doJSON(adminRouter, http.MethodGet, "/custom-orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = parseResponse(t, w)["data"].([]interface{})
	assert.Len(t, data, 2, "An admin sees every order")
}

func TestRequireElevatedGuardsAdminRoutes(t *testing.T) {
	db, ctrl := newOrderTestRouter(t)
	customer := createControllerUser(t, db, models.RoleCustomer)
	order := seedControllerOrder(t, db, customer.ID, models.StatusPending)

	router := gin.New()
	router.POST("/custom-orders/:id/terima",
		asRequester(models.Requester{ID: customer.ID, Role: models.RoleCustomer}),
		middleware.RequireElevated(),
		ctrl.Terima,
	)

	w := doJSON(router, http.MethodPost, fmt.Sprintf("/custom-orders/%d/terima", order.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	errorData := parseResponse(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "FORBIDDEN", errorData["code"])

	// The order must be untouched.
	var persisted models.CustomOrder
	db.First(&persisted, order.ID)
	assert.Equal(t, models.StatusPending, persisted.Status)
}

func TestDeleteCustomOrderEndpoints(t *testing.T) {
	db, ctrl := newOrderTestRouter(t)
	customer := createControllerUser(t, db, models.RoleCustomer)
	admin := createControllerUser(t, db, models.RoleAdmin)
	order := seedControllerOrder(t, db, customer.ID, models.StatusDibatalkan)

	router := gin.New()
	group := router.Group("", asRequester(models.Requester{ID: admin.ID, Role: models.RoleAdmin}))
	group.DELETE("/custom-orders/:id", ctrl.SoftDelete)
	group.DELETE("/custom-orders/:id/permanent", ctrl.HardDelete)

	w := doJSON(router, http.MethodDelete, fmt.Sprintf("/custom-orders/%d", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, parseResponse(t, w)["success"].(bool))

	w = doJSON(router, http.MethodDelete, fmt.Sprintf("/custom-orders/%d/permanent", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Unscoped().Model(&models.CustomOrder{}).Where("id = ?", order.ID).Count(&count)
	assert.Zero(t, count)
}
