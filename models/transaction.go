package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentStatus enumerates the confirmation states of a payment record.
// BELUM_BAYAR covers both "not yet paid" and "paid, awaiting confirmation";
// the two are distinguished only by whether FileScreenshot is set.
type PaymentStatus string

const (
	PaymentBelumBayar PaymentStatus = "BELUM_BAYAR"
	PaymentLunas      PaymentStatus = "LUNAS"
	PaymentDitolak    PaymentStatus = "DITOLAK"
)

// PaymentMethod enumerates the accepted payment channels.
type PaymentMethod string

const (
	MethodTransferBank PaymentMethod = "TRANSFER_BANK"
	MethodEWallet      PaymentMethod = "E_WALLET"
	MethodQris         PaymentMethod = "QRIS"
	MethodTunai        PaymentMethod = "TUNAI"
)

// ValidPaymentMethod reports whether m is a recognized payment method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodTransferBank, MethodEWallet, MethodQris, MethodTunai:
		return true
	}
	return false
}

// Transaction is a payment record tracking the amount owed and its
// confirmation state. A transaction spawned by an order deal carries the
// negotiated total and links back to the order through CustomOrderID.
type Transaction struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UniqueID string `gorm:"uniqueIndex;not null" json:"unique_id"` // external token, format TRX-<ts>-<rand>

	TotalHarga     Rupiah         `gorm:"type:numeric;not null" json:"total_harga"`
	Status         PaymentStatus  `gorm:"not null;default:'BELUM_BAYAR';index" json:"status"`
	PaymentMethod  *PaymentMethod `json:"payment_method"`
	FileScreenshot *string        `json:"file_screenshot"` // proof-of-payment reference
	Keterangan     *string        `json:"keterangan"`
	AlasanDitolak  *string        `json:"alasan_ditolak"`

	UserID        uint         `gorm:"not null;index" json:"user_id"`
	User          User         `gorm:"foreignKey:UserID" json:"user"`
	AdminID       *uint        `gorm:"index" json:"admin_id"`
	Admin         *User        `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	CustomOrderID *uint        `gorm:"uniqueIndex" json:"custom_order_id"` // at most one transaction per order
	CustomOrder   *CustomOrder `gorm:"foreignKey:CustomOrderID" json:"custom_order,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
