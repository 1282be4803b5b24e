package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/ardiansyahdp/konveksi-api/apperrors"
	"github.com/ardiansyahdp/konveksi-api/cache"
	"github.com/ardiansyahdp/konveksi-api/models"
	"github.com/ardiansyahdp/konveksi-api/utils"
)

// OrderService owns the custom-order lifecycle: creation, the admin
// transitions (terima, tolak, deal, batal) and deletion. Status transitions
// are enforced with conditional updates so two racing admins cannot both win;
// the loser gets a ConflictError instead of silently overwriting.
type OrderService struct {
	db       *gorm.DB
	cache    cache.Store
	notifier Notifier
}

// NewOrderService wires the service to its collaborators.
func NewOrderService(db *gorm.DB, store cache.Store, notifier Notifier) *OrderService {
	return &OrderService{db: db, cache: store, notifier: notifier}
}

// CreateOrderRequest is the payload for submitting a new custom order.
type CreateOrderRequest struct {
	NamaPemesanan       string        `json:"nama_pemesanan"`
	Ukuran              models.Ukuran `json:"ukuran"`
	JumlahBarang        *int          `json:"jumlah_barang"`
	Warna               *string       `json:"warna"`
	Catatan             *string       `json:"catatan"`
	MaterialSendiri     bool          `json:"material_sendiri"`
	MaterialID          *uint         `json:"material_id"`
	ReferensiCustom     bool          `json:"referensi_custom"`
	FileReferensiCustom *string       `json:"file_referensi_custom"`
	ModelBajuID         *uint         `json:"model_baju_id"`
	UserID              uint          `json:"user_id"`
}

// UpdateOrderRequest is a partial update of descriptive fields. Status is not
// updatable here; it only moves through the lifecycle transitions.
type UpdateOrderRequest struct {
	NamaPemesanan   *string        `json:"nama_pemesanan"`
	Ukuran          *models.Ukuran `json:"ukuran"`
	JumlahBarang    *int           `json:"jumlah_barang"`
	Warna           *string        `json:"warna"`
	Catatan         *string        `json:"catatan"`
	MaterialSendiri *bool          `json:"material_sendiri"`
	MaterialID      *uint          `json:"material_id"`
}

// ListOrdersParams carries search, pagination and sorting for order lists.
type ListOrdersParams struct {
	Q         string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

func (p ListOrdersParams) normalized() ListOrdersParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 25
	}
	switch p.SortBy {
	case "created_at", "updated_at", "nama_pemesanan", "status", "jumlah_barang", "ukuran":
	default:
		p.SortBy = "created_at"
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
	return p
}

func (p ListOrdersParams) cacheSuffix() string {
	return fmt.Sprintf("q=%s:page=%d:limit=%d:sort=%s_%s", p.Q, p.Page, p.Limit, p.SortBy, p.SortOrder)
}

func validateCreateOrder(req *CreateOrderRequest) error {
	var c apperrors.Collector

	if req.UserID == 0 {
		c.Add("user_id", "user_id is required")
	}
	if req.NamaPemesanan == "" {
		c.Add("nama_pemesanan", "nama_pemesanan is required")
	}
	if !models.ValidUkuran(req.Ukuran) {
		c.Add("ukuran", "ukuran is not a recognized size")
	}
	if req.JumlahBarang == nil {
		c.Add("jumlah_barang", "jumlah_barang is required")
	} else if *req.JumlahBarang < 0 {
		c.Add("jumlah_barang", "jumlah_barang must not be negative")
	}

	// Material sourcing: exactly one branch holds.
	if req.MaterialSendiri {
		req.MaterialID = nil
	} else if req.MaterialID == nil {
		c.Add("material_id", "material_id is required when material_sendiri is false")
	}

	// Design sourcing: a custom reference file or a catalog model.
	if req.ReferensiCustom {
		req.ModelBajuID = nil
		if req.FileReferensiCustom == nil || *req.FileReferensiCustom == "" {
			c.Add("file_referensi_custom", "file_referensi_custom is required when referensi_custom is true")
		}
	} else {
		req.FileReferensiCustom = nil
		if req.ModelBajuID == nil {
			c.Add("model_baju_id", "model_baju_id is required when referensi_custom is false")
		}
	}

	return c.Err()
}

// Create validates the payload, persists the order with status PENDING and a
// fresh external token, invalidates the list caches and dispatches the admin
// notification without blocking on it.
func (s *OrderService) Create(req *CreateOrderRequest) (*models.CustomOrder, error) {
	if err := validateCreateOrder(req); err != nil {
		log.Printf("order create validation failed: %v", err)
		return nil, err
	}

	order := models.CustomOrder{
		UniqueID:            utils.NewUniqueID("CSO"),
		NamaPemesanan:       req.NamaPemesanan,
		Ukuran:              req.Ukuran,
		JumlahBarang:        *req.JumlahBarang,
		Warna:               req.Warna,
		Catatan:             req.Catatan,
		Status:              models.StatusPending,
		MaterialSendiri:     req.MaterialSendiri,
		MaterialID:          req.MaterialID,
		ReferensiCustom:     req.ReferensiCustom,
		FileReferensiCustom: req.FileReferensiCustom,
		ModelBajuID:         req.ModelBajuID,
		UserID:              req.UserID,
	}

	if err := s.db.Create(&order).Error; err != nil {
		return nil, apperrors.NewDependency("create custom order", err)
	}
	if err := s.db.Preload("User").First(&order, order.ID).Error; err != nil {
		return nil, apperrors.NewDependency("load custom order", err)
	}

	s.cache.DeletePattern(cache.OrderListPattern())
	s.cache.DeletePattern(cache.OrderUserPattern(order.UserID))

	// Notify after the row is durable; delivery failure never fails the create.
	go func(id uint, uniqueID string) {
		if err := s.notifier.NotifyOrderCreated(id, uniqueID); err != nil {
			log.Printf("failed to send order created notification for %s: %v", uniqueID, err)
		}
	}(order.ID, order.UniqueID)

	log.Printf("custom order created id=%d unique_id=%s user=%d", order.ID, order.UniqueID, order.UserID)
	return &order, nil
}

// Update applies a partial update of descriptive fields.
func (s *OrderService) Update(id uint, req *UpdateOrderRequest) (*models.CustomOrder, error) {
	var c apperrors.Collector
	if req.Ukuran != nil && !models.ValidUkuran(*req.Ukuran) {
		c.Add("ukuran", "ukuran is not a recognized size")
	}
	if req.JumlahBarang != nil && *req.JumlahBarang < 0 {
		c.Add("jumlah_barang", "jumlah_barang must not be negative")
	}
	if req.MaterialSendiri != nil && !*req.MaterialSendiri && req.MaterialID == nil {
		c.Add("material_id", "material_id is required when material_sendiri is false")
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	order, err := s.loadOrder(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.NamaPemesanan != nil {
		updates["nama_pemesanan"] = *req.NamaPemesanan
	}
	if req.Ukuran != nil {
		updates["ukuran"] = *req.Ukuran
	}
	if req.JumlahBarang != nil {
		updates["jumlah_barang"] = *req.JumlahBarang
	}
	if req.Warna != nil {
		updates["warna"] = *req.Warna
	}
	if req.Catatan != nil {
		updates["catatan"] = *req.Catatan
	}
	if req.MaterialSendiri != nil {
		updates["material_sendiri"] = *req.MaterialSendiri
		if *req.MaterialSendiri {
			updates["material_id"] = nil
		} else {
			updates["material_id"] = *req.MaterialID
		}
	} else if req.MaterialID != nil {
		// Without an accompanying flag change, a catalog material only
		// makes sense on an order that is not using the customer's own.
		if order.MaterialSendiri {
			return nil, apperrors.NewValidation("material_id", "material_id cannot be set while material_sendiri is true")
		}
		updates["material_id"] = *req.MaterialID
	}

	if len(updates) > 0 {
		if err := s.db.Model(order).Updates(updates).Error; err != nil {
			return nil, apperrors.NewDependency("update custom order", err)
		}
	}

	s.invalidateOrder(order.ID, order.UserID)
	return s.reload(order.ID)
}

// GetByID returns one order, cache-first.
func (s *OrderService) GetByID(id uint) (*models.CustomOrder, error) {
	key := cache.OrderKey(id)
	if b, ok := s.cache.Get(key); ok {
		var cached models.CustomOrder
		if err := json.Unmarshal(b, &cached); err == nil {
			return &cached, nil
		}
		s.cache.Delete(key)
	}

	order, err := s.loadOrder(id)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(order); err == nil {
		s.cache.Set(key, b, cache.TTLFrequent)
	}
	return order, nil
}

// List returns orders matching the params. Non-elevated requesters only ever
// see their own orders, whatever the caller asked for.
func (s *OrderService) List(params ListOrdersParams, requester models.Requester) ([]models.CustomOrder, error) {
	params = params.normalized()

	key := cache.OrderListKey(params.cacheSuffix())
	if !requester.IsElevated() {
		key = cache.OrderUserListKey(requester.ID, params.cacheSuffix())
	}
	if b, ok := s.cache.Get(key); ok {
		var cached []models.CustomOrder
		if err := json.Unmarshal(b, &cached); err == nil {
			return cached, nil
		}
		s.cache.Delete(key)
	}

	query := s.db.Model(&models.CustomOrder{}).Preload("User").Preload("Admin")
	if params.Q != "" {
		like := "%" + params.Q + "%"
		query = query.Where(
			"LOWER(nama_pemesanan) LIKE LOWER(?) OR LOWER(unique_id) LIKE LOWER(?) OR LOWER(warna) LIKE LOWER(?)",
			like, like, like,
		)
	}
	if !requester.IsElevated() {
		query = query.Where("user_id = ?", requester.ID)
	}

	var orders []models.CustomOrder
	err := query.
		Order(fmt.Sprintf("%s %s", params.SortBy, params.SortOrder)).
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.NewDependency("list custom orders", err)
	}

	if b, err := json.Marshal(orders); err == nil {
		s.cache.Set(key, b, cache.TTLFrequent)
	}
	return orders, nil
}

// Accept moves a PENDING order to NEGOSIASI, recording the accepting admin
// and the acceptance timestamp.
func (s *OrderService) Accept(id uint, adminID uint) (*models.CustomOrder, error) {
	if adminID == 0 {
		return nil, apperrors.NewValidation("admin_id", "admin_id is required")
	}

	order, err := s.loadOrder(id)
	if err != nil {
		return nil, err
	}

	res := s.db.Model(&models.CustomOrder{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":        models.StatusNegosiasi,
			"admin_id":      adminID,
			"diterima_pada": time.Now(),
		})
	if res.Error != nil {
		return nil, apperrors.NewDependency("accept custom order", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewConflict(fmt.Sprintf("order cannot be accepted from status %s", order.Status))
	}

	s.invalidateOrder(id, order.UserID)
	return s.reload(id)
}

// Reject moves a non-terminal order to DITOLAK with a mandatory reason.
func (s *OrderService) Reject(id uint, adminID uint, alasanDitolak string) (*models.CustomOrder, error) {
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

	order, err := s.loadOrder(id)
	if err != nil {
		return nil, err
	}

	res := s.db.Model(&models.CustomOrder{}).
		Where("id = ? AND status IN ?", id, nonTerminalStatuses()).
		Updates(map[string]interface{}{
			"status":         models.StatusDitolak,
			"admin_id":       adminID,
			"ditolak_pada":   time.Now(),
			"alasan_ditolak": alasanDitolak,
		})
	if res.Error != nil {
		return nil, apperrors.NewDependency("reject custom order", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewConflict(fmt.Sprintf("order cannot be rejected from status %s", order.Status))
	}

	s.invalidateOrder(id, order.UserID)
	return s.reload(id)
}

// Deal finalizes the negotiated price, moves the order to PENGERJAAN and
// spawns its payment record. Both writes run in one database transaction: if
// the payment record cannot be created, the status change rolls back.
func (s *OrderService) Deal(id uint, adminID uint, totalHarga *models.Rupiah) (*models.CustomOrder, error) {
	var c apperrors.Collector
	if adminID == 0 {
		c.Add("admin_id", "admin_id is required")
	}
	if !totalHarga.IsPositive() {
		c.Add("total_harga", "total_harga must be greater than zero")
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	order, err := s.loadOrder(id)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CustomOrder{}).
			Where("id = ? AND status = ?", id, models.StatusNegosiasi).
			Updates(map[string]interface{}{
				"status":      models.StatusPengerjaan,
				"total_harga": totalHarga,
				"admin_id":    adminID,
			})
		if res.Error != nil {
			return apperrors.NewDependency("deal custom order", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NewConflict(fmt.Sprintf("order cannot be dealt from status %s", order.Status))
		}

		payment := models.Transaction{
			UniqueID:      utils.NewUniqueID("TRX"),
			TotalHarga:    *totalHarga,
			Status:        models.PaymentBelumBayar,
			UserID:        order.UserID,
			AdminID:       &adminID,
			CustomOrderID: &order.ID,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return apperrors.NewDependency("create payment record", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateOrder(id, order.UserID)
	s.cache.DeletePattern(cache.TransactionListPattern())
	s.cache.DeletePattern(cache.TransactionUserPattern(order.UserID))

	log.Printf("custom order %d dealt at %s, payment record created", id, totalHarga.String())
	return s.reload(id)
}

// Cancel moves a non-terminal order to DIBATALKAN. The reason is optional.
func (s *OrderService) Cancel(id uint, adminID uint, alasanDitolak *string) (*models.CustomOrder, error) {
	if adminID == 0 {
		return nil, apperrors.NewValidation("admin_id", "admin_id is required")
	}

	order, err := s.loadOrder(id)
	if err != nil {
		return nil, err
	}

	res := s.db.Model(&models.CustomOrder{}).
		Where("id = ? AND status IN ?", id, nonTerminalStatuses()).
		Updates(map[string]interface{}{
			"status":         models.StatusDibatalkan,
			"admin_id":       adminID,
			"alasan_ditolak": alasanDitolak,
		})
	if res.Error != nil {
		return nil, apperrors.NewDependency("cancel custom order", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewConflict(fmt.Sprintf("order cannot be cancelled from status %s", order.Status))
	}

	s.invalidateOrder(id, order.UserID)
	return s.reload(id)
}

// SoftDelete stamps the deletion timestamp; the row stays queryable through
// administrative paths only.
func (s *OrderService) SoftDelete(id uint) error {
	order, err := s.loadOrder(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&models.CustomOrder{}, id).Error; err != nil {
		return apperrors.NewDependency("soft delete custom order", err)
	}

	s.invalidateOrder(id, order.UserID)
	return nil
}

// HardDelete removes the row permanently.
func (s *OrderService) HardDelete(id uint) error {
	var order models.CustomOrder
	if err := s.db.Unscoped().First(&order, id).Error; err != nil {
		return s.translate(err, id)
	}

	if err := s.db.Unscoped().Delete(&models.CustomOrder{}, id).Error; err != nil {
		return apperrors.NewDependency("hard delete custom order", err)
	}

	s.invalidateOrder(id, order.UserID)
	return nil
}

func nonTerminalStatuses() []models.OrderStatus {
	return []models.OrderStatus{
		models.StatusPending,
		models.StatusNegosiasi,
		models.StatusPembayaran,
		models.StatusPengerjaan,
	}
}

func (s *OrderService) loadOrder(id uint) (*models.CustomOrder, error) {
	var order models.CustomOrder
	if err := s.db.Preload("User").Preload("Admin").First(&order, id).Error; err != nil {
		return nil, s.translate(err, id)
	}
	return &order, nil
}

func (s *OrderService) reload(id uint) (*models.CustomOrder, error) {
	return s.loadOrder(id)
}

func (s *OrderService) translate(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFound("custom order", id)
	}
	return apperrors.NewDependency("query custom order", err)
}

func (s *OrderService) invalidateOrder(id, userID uint) {
	s.cache.Delete(cache.OrderKey(id))
	s.cache.DeletePattern(cache.OrderListPattern())
	s.cache.DeletePattern(cache.OrderUserPattern(userID))
}
