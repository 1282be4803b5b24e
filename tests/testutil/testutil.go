package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ardiansyahdp/konveksi-api/cache"
	"github.com/ardiansyahdp/konveksi-api/models"
)

var userSeq int

// SetupTestDB opens a fresh in-memory database with the full schema migrated.
// Each call returns an isolated database, so tests never share state.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

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

// NewTestCache returns a process-local cache store suitable for tests.
func NewTestCache() cache.Store {
	return cache.NewMemoryStore(cache.TTLFrequent, time.Minute)
}

// CreateTestUser inserts a user with the given role and returns it.
func CreateTestUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()

	userSeq++
	user := models.User{
		Auth0ID: fmt.Sprintf("auth0|test-%s-%d", t.Name(), userSeq),
		Name:    fmt.Sprintf("Test User %d", userSeq),
		Email:   fmt.Sprintf("user%d-%s@example.com", userSeq, role),
		Role:    role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}

// CreateTestOrder inserts a custom order owned by userID in the given status.
func CreateTestOrder(t *testing.T, db *gorm.DB, userID uint, status models.OrderStatus) *models.CustomOrder {
	t.Helper()

	materialID := uint(1)
	modelBajuID := uint(2)
	order := models.CustomOrder{
		UniqueID:      fmt.Sprintf("CSO-%d-%03d", time.Now().UnixMilli(), userSeq),
		NamaPemesanan: "Seragam Kantor",
		Ukuran:        models.UkuranLarge,
		JumlahBarang:  12,
		Status:        status,
		MaterialID:    &materialID,
		ModelBajuID:   &modelBajuID,
		UserID:        userID,
	}
	userSeq++
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to create test order: %v", err)
	}
	return &order
}

// CreateTestTransaction inserts a payment record owned by userID in the given
// status. Pass a nil orderID for a standalone transaction.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID uint, orderID *uint, status models.PaymentStatus) *models.Transaction {
	t.Helper()

	txn := models.Transaction{
		UniqueID:      fmt.Sprintf("TRX-%d-%03d", time.Now().UnixMilli(), userSeq),
		TotalHarga:    *models.NewRupiah(1500000),
		Status:        status,
		UserID:        userID,
		CustomOrderID: orderID,
	}
	userSeq++
	if err := db.Create(&txn).Error; err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}
	return &txn
}
