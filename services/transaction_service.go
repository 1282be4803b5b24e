package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/ardiansyahdp/konveksi-api/apperrors"
	"github.com/ardiansyahdp/konveksi-api/cache"
	"github.com/ardiansyahdp/konveksi-api/models"
	"github.com/ardiansyahdp/konveksi-api/utils"
)

// TransactionService owns the payment workflow: proof submission by the owning
// customer, confirmation or rejection by an admin, and resubmission after a
// rejection. Accepting a payment also completes the order that spawned the
// transaction, in the same database transaction.
type TransactionService struct {
	db    *gorm.DB
	cache cache.Store
}

// NewTransactionService wires the service to its collaborators.
func NewTransactionService(db *gorm.DB, store cache.Store) *TransactionService {
	return &TransactionService{db: db, cache: store}
}

// CreateTransactionRequest is the payload for direct administrative creation
// of a payment record not tied to the order deal flow.
type CreateTransactionRequest struct {
	TotalHarga     *models.Rupiah        `json:"total_harga"`
	PaymentMethod  *models.PaymentMethod `json:"payment_method"`
	FileScreenshot *string               `json:"file_screenshot"`
	Keterangan     *string               `json:"keterangan"`
	UserID         uint                  `json:"user_id"`
	AdminID        *uint                 `json:"admin_id"`
	CustomOrderID  *uint                 `json:"custom_order_id"`
}

// UpdateTransactionRequest is a partial administrative update.
type UpdateTransactionRequest struct {
	TotalHarga     *models.Rupiah        `json:"total_harga"`
	PaymentMethod  *models.PaymentMethod `json:"payment_method"`
	FileScreenshot *string               `json:"file_screenshot"`
	Keterangan     *string               `json:"keterangan"`
	AdminID        *uint                 `json:"admin_id"`
}

// SubmitPaymentRequest carries the customer's proof of payment.
type SubmitPaymentRequest struct {
	FileScreenshot string                `json:"file_screenshot"`
	PaymentMethod  *models.PaymentMethod `json:"payment_method"`
	Keterangan     *string               `json:"keterangan"`
}

// ListTransactionsParams carries search, filters, pagination and sorting.
type ListTransactionsParams struct {
	Search        string
	Page          int
	Limit         int
	SortBy        string
	SortOrder     string
	Status        *models.PaymentStatus
	PaymentMethod *models.PaymentMethod
	UserID        *uint
	AdminID       *uint
}

func (p ListTransactionsParams) normalized() ListTransactionsParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 25
	}
	switch p.SortBy {
	case "created_at", "updated_at", "status", "total_harga":
	default:
		p.SortBy = "created_at"
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
	return p
}

func (p ListTransactionsParams) cacheSuffix() string {
	suffix := fmt.Sprintf("q=%s:page=%d:limit=%d:sort=%s_%s", p.Search, p.Page, p.Limit, p.SortBy, p.SortOrder)
	if p.Status != nil {
		suffix += ":status=" + string(*p.Status)
	}
	if p.PaymentMethod != nil {
		suffix += ":method=" + string(*p.PaymentMethod)
	}
	if p.UserID != nil {
		suffix += fmt.Sprintf(":uid=%d", *p.UserID)
	}
	if p.AdminID != nil {
		suffix += fmt.Sprintf(":aid=%d", *p.AdminID)
	}
	return suffix
}

// Create persists a transaction outside the order deal flow.
func (s *TransactionService) Create(req *CreateTransactionRequest) (*models.Transaction, error) {
	var c apperrors.Collector
	if req.UserID == 0 {
		c.Add("user_id", "user_id is required")
	}
	if req.TotalHarga == nil {
		c.Add("total_harga", "total_harga is required")
	} else if req.TotalHarga.Sign() < 0 {
		c.Add("total_harga", "total_harga must not be negative")
	}
	if req.PaymentMethod != nil && !models.ValidPaymentMethod(*req.PaymentMethod) {
		c.Add("payment_method", "payment_method is not recognized")
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	txn := models.Transaction{
		UniqueID:       utils.NewUniqueID("TRX"),
		TotalHarga:     *req.TotalHarga,
		Status:         models.PaymentBelumBayar,
		PaymentMethod:  req.PaymentMethod,
		FileScreenshot: req.FileScreenshot,
		Keterangan:     req.Keterangan,
		UserID:         req.UserID,
		AdminID:        req.AdminID,
		CustomOrderID:  req.CustomOrderID,
	}
	if err := s.db.Create(&txn).Error; err != nil {
		return nil, apperrors.NewDependency("create transaction", err)
	}

	s.cache.DeletePattern(cache.TransactionListPattern())
	s.cache.DeletePattern(cache.TransactionUserPattern(req.UserID))

	log.Printf("transaction created id=%d unique_id=%s user=%d", txn.ID, txn.UniqueID, txn.UserID)
	return s.reload(txn.ID)
}

// GetByID returns one transaction, cache-first.
func (s *TransactionService) GetByID(id uint) (*models.Transaction, error) {
	key := cache.TransactionKey(id)
	if b, ok := s.cache.Get(key); ok {
		var cached models.Transaction
		if err := json.Unmarshal(b, &cached); err == nil {
			return &cached, nil
		}
		s.cache.Delete(key)
	}

	txn, err := s.loadTransaction(id)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(txn); err == nil {
		s.cache.Set(key, b, cache.TTLFrequent)
	}
	return txn, nil
}

// List returns transactions matching the params. Non-elevated requesters are
// restricted to their own transactions regardless of the filter they sent.
func (s *TransactionService) List(params ListTransactionsParams, requester models.Requester) ([]models.Transaction, error) {
	params = params.normalized()

	key := cache.TransactionListKey(params.cacheSuffix())
	if !requester.IsElevated() {
		key = cache.TransactionUserListKey(requester.ID, params.cacheSuffix())
	}
	if b, ok := s.cache.Get(key); ok {
		var cached []models.Transaction
		if err := json.Unmarshal(b, &cached); err == nil {
			return cached, nil
		}
		s.cache.Delete(key)
	}

	query := s.db.Model(&models.Transaction{}).
		Preload("User").Preload("Admin").Preload("CustomOrder")

	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.
			Joins("JOIN users ON users.id = transactions.user_id").
			Where(
				"LOWER(transactions.keterangan) LIKE LOWER(?) OR LOWER(transactions.unique_id) LIKE LOWER(?) OR LOWER(users.name) LIKE LOWER(?) OR LOWER(users.email) LIKE LOWER(?)",
				like, like, like, like,
			)
	}
	if params.Status != nil {
		query = query.Where("transactions.status = ?", *params.Status)
	}
	if params.PaymentMethod != nil {
		query = query.Where("transactions.payment_method = ?", *params.PaymentMethod)
	}
	if params.AdminID != nil {
		query = query.Where("transactions.admin_id = ?", *params.AdminID)
	}
	if !requester.IsElevated() {
		query = query.Where("transactions.user_id = ?", requester.ID)
	} else if params.UserID != nil {
		query = query.Where("transactions.user_id = ?", *params.UserID)
	}

	var txns []models.Transaction
	err := query.
		Order(fmt.Sprintf("transactions.%s %s", params.SortBy, params.SortOrder)).
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&txns).Error
	if err != nil {
		return nil, apperrors.NewDependency("list transactions", err)
	}

	if b, err := json.Marshal(txns); err == nil {
		s.cache.Set(key, b, cache.TTLFrequent)
	}
	return txns, nil
}

// Update applies a partial administrative update.
func (s *TransactionService) Update(id uint, req *UpdateTransactionRequest) (*models.Transaction, error) {
	var c apperrors.Collector
	if req.TotalHarga != nil && req.TotalHarga.Sign() < 0 {
		c.Add("total_harga", "total_harga must not be negative")
	}
	if req.PaymentMethod != nil && !models.ValidPaymentMethod(*req.PaymentMethod) {
		c.Add("payment_method", "payment_method is not recognized")
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	txn, err := s.loadTransaction(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.TotalHarga != nil {
		updates["total_harga"] = req.TotalHarga
	}
	if req.PaymentMethod != nil {
		updates["payment_method"] = *req.PaymentMethod
	}
	if req.FileScreenshot != nil {
		updates["file_screenshot"] = *req.FileScreenshot
	}
	if req.Keterangan != nil {
		updates["keterangan"] = *req.Keterangan
	}
	if req.AdminID != nil {
		updates["admin_id"] = *req.AdminID
	}

	if len(updates) > 0 {
		if err := s.db.Model(txn).Updates(updates).Error; err != nil {
			return nil, apperrors.NewDependency("update transaction", err)
		}
	}

	s.invalidateTransaction(txn.ID, txn.UserID)
	return s.reload(id)
}

// SubmitPayment stores the customer's proof of payment. Only the owning
// customer may submit; the status stays BELUM_BAYAR until an admin confirms.
func (s *TransactionService) SubmitPayment(id uint, req *SubmitPaymentRequest, requesterID uint) (*models.Transaction, error) {
	var c apperrors.Collector
	if req.FileScreenshot == "" {
		c.Add("file_screenshot", "file_screenshot is required")
	}
	if req.PaymentMethod == nil {
		c.Add("payment_method", "payment_method is required")
	} else if !models.ValidPaymentMethod(*req.PaymentMethod) {
		c.Add("payment_method", "payment_method is not recognized")
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	txn, err := s.loadTransaction(id)
	if err != nil {
		return nil, err
	}
	if txn.UserID != requesterID {
		log.Printf("payment submit blocked: requester %d does not own transaction %d", requesterID, id)
		return nil, apperrors.NewForbidden("not authorized to modify this transaction")
	}

	updates := map[string]interface{}{
		"status":          models.PaymentBelumBayar,
		"file_screenshot": req.FileScreenshot,
		"payment_method":  *req.PaymentMethod,
	}
	if req.Keterangan != nil {
		updates["keterangan"] = *req.Keterangan
	}
	// A confirmed payment stays confirmed, and a rejected one must go
	// through resend. Proof can only land on an unpaid transaction.
	res := s.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, models.PaymentBelumBayar).
		Updates(updates)
	if res.Error != nil {
		return nil, apperrors.NewDependency("submit payment", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewConflict("payment proof can only be submitted for unpaid transactions")
	}

	s.invalidateTransaction(id, txn.UserID)
	log.Printf("payment submitted for transaction %d by user %d", id, requesterID)
	return s.reload(id)
}

// AcceptPayment confirms the payment. If the transaction was spawned by a
// custom order, that order is completed in the same database transaction.
func (s *TransactionService) AcceptPayment(id uint, adminID uint) (*models.Transaction, error) {
	if adminID == 0 {
		return nil, apperrors.NewValidation("admin_id", "admin_id is required")
	}

	txn, err := s.loadTransaction(id)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", id, models.PaymentBelumBayar).
			Updates(map[string]interface{}{
				"status":   models.PaymentLunas,
				"admin_id": adminID,
			})
		if res.Error != nil {
			return apperrors.NewDependency("accept payment", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NewConflict(fmt.Sprintf("payment cannot be accepted from status %s", txn.Status))
		}

		if txn.CustomOrderID != nil {
			if err := tx.Model(&models.CustomOrder{}).
				Where("id = ?", *txn.CustomOrderID).
				Update("status", models.StatusSelesai).Error; err != nil {
				return apperrors.NewDependency("complete custom order", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTransaction(id, txn.UserID)
	if txn.CustomOrderID != nil {
		s.cache.Delete(cache.OrderKey(*txn.CustomOrderID))
		s.cache.DeletePattern(cache.OrderUserPattern(txn.UserID))
	}

	log.Printf("payment accepted for transaction %d by admin %d", id, adminID)
	return s.reload(id)
}

// RejectPayment marks the payment DITOLAK with a mandatory reason; the
// customer may then resubmit proof through ResendPayment.
func (s *TransactionService) RejectPayment(id uint, adminID uint, alasanDitolak string) (*models.Transaction, error) {
	var c apperrors.Collector
	if adminID == 0 {
		c.Add("admin_id", "admin_id is required")
	}
	if alasanDitolak == "" {
		c.Add("alasan_ditolak", "alasan_ditolak is required")
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	txn, err := s.loadTransaction(id)
	if err != nil {
		return nil, err
	}

	res := s.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, models.PaymentBelumBayar).
		Updates(map[string]interface{}{
			"status":         models.PaymentDitolak,
			"admin_id":       adminID,
			"alasan_ditolak": alasanDitolak,
		})
	if res.Error != nil {
		return nil, apperrors.NewDependency("reject payment", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewConflict(fmt.Sprintf("payment cannot be rejected from status %s", txn.Status))
	}

	s.invalidateTransaction(id, txn.UserID)
	log.Printf("payment rejected for transaction %d by admin %d: %s", id, adminID, alasanDitolak)
	return s.reload(id)
}

// ResendPayment resubmits proof after a rejection. Legal only while the
// transaction is DITOLAK; the rejection reason is cleared.
func (s *TransactionService) ResendPayment(id uint, req *SubmitPaymentRequest, requesterID uint) (*models.Transaction, error) {
	if req.FileScreenshot == "" {
		return nil, apperrors.NewValidation("file_screenshot", "file_screenshot is required")
	}
	if req.PaymentMethod != nil && !models.ValidPaymentMethod(*req.PaymentMethod) {
		return nil, apperrors.NewValidation("payment_method", "payment_method is not recognized")
	}

	txn, err := s.loadTransaction(id)
	if err != nil {
		return nil, err
	}
	if txn.UserID != requesterID {
		log.Printf("payment resend blocked: requester %d does not own transaction %d", requesterID, id)
		return nil, apperrors.NewForbidden("not authorized to modify this transaction")
	}

	updates := map[string]interface{}{
		"status":          models.PaymentBelumBayar,
		"alasan_ditolak":  nil,
		"file_screenshot": req.FileScreenshot,
	}
	if req.PaymentMethod != nil {
		updates["payment_method"] = *req.PaymentMethod
	}
	if req.Keterangan != nil {
		updates["keterangan"] = *req.Keterangan
	}

	res := s.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, models.PaymentDitolak).
		Updates(updates)
	if res.Error != nil {
		return nil, apperrors.NewDependency("resend payment", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewConflict("payment can only be resent for rejected transactions")
	}

	s.invalidateTransaction(id, txn.UserID)
	log.Printf("payment resent for transaction %d by user %d", id, requesterID)
	return s.reload(id)
}

// SoftDelete stamps the deletion timestamp.
func (s *TransactionService) SoftDelete(id uint) error {
	txn, err := s.loadTransaction(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&models.Transaction{}, id).Error; err != nil {
		return apperrors.NewDependency("soft delete transaction", err)
	}

	s.invalidateTransaction(id, txn.UserID)
	return nil
}

// HardDelete removes the row permanently.
func (s *TransactionService) HardDelete(id uint) error {
	var txn models.Transaction
	if err := s.db.Unscoped().First(&txn, id).Error; err != nil {
		return s.translate(err, id)
	}

	if err := s.db.Unscoped().Delete(&models.Transaction{}, id).Error; err != nil {
		return apperrors.NewDependency("hard delete transaction", err)
	}

	s.invalidateTransaction(id, txn.UserID)
	return nil
}

func (s *TransactionService) loadTransaction(id uint) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.Preload("User").Preload("Admin").Preload("CustomOrder").First(&txn, id).Error
	if err != nil {
		return nil, s.translate(err, id)
	}
	return &txn, nil
}

func (s *TransactionService) reload(id uint) (*models.Transaction, error) {
	return s.loadTransaction(id)
}

func (s *TransactionService) translate(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFound("transaction", id)
	}
	return apperrors.NewDependency("query transaction", err)
}

func (s *TransactionService) invalidateTransaction(id, userID uint) {
	s.cache.Delete(cache.TransactionKey(id))
	s.cache.DeletePattern(cache.TransactionListPattern())
	s.cache.DeletePattern(cache.TransactionUserPattern(userID))
}
