package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus enumerates the lifecycle states of a custom garment order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusDitolak    OrderStatus = "DITOLAK"
	StatusNegosiasi  OrderStatus = "NEGOSIASI"
	StatusPembayaran OrderStatus = "PEMBAYARAN" // defined but never set by any transition
	StatusPengerjaan OrderStatus = "PENGERJAAN"
	StatusDibatalkan OrderStatus = "DIBATALKAN"
	StatusSelesai    OrderStatus = "SELESAI"
)

// IsTerminal reports whether the status accepts no further lifecycle transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDitolak || s == StatusDibatalkan || s == StatusSelesai
}

// Ukuran is the requested garment size.
type Ukuran string

const (
	UkuranExtraSmall       Ukuran = "extra_small"
	UkuranSmall            Ukuran = "small"
	UkuranMedium           Ukuran = "medium"
	UkuranReguler          Ukuran = "reguler"
	UkuranLarge            Ukuran = "large"
	UkuranExtraLarge       Ukuran = "extra_large"
	UkuranDoubleExtraLarge Ukuran = "double_extra_large"
	UkuranCustom           Ukuran = "custom"
)

// ValidUkuran reports whether u is a recognized size value.
func ValidUkuran(u Ukuran) bool {
	switch u {
	case UkuranExtraSmall, UkuranSmall, UkuranMedium, UkuranReguler,
		UkuranLarge, UkuranExtraLarge, UkuranDoubleExtraLarge, UkuranCustom:
		return true
	}
	return false
}

// CustomOrder represents a customer's request for a custom-made garment,
// tracked through the admin-mediated negotiation and fulfillment lifecycle.
type CustomOrder struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UniqueID string `gorm:"uniqueIndex;not null" json:"unique_id"` // external token, format CSO-<ts>-<rand>

	NamaPemesanan string      `gorm:"not null" json:"nama_pemesanan"`
	Ukuran        Ukuran      `gorm:"not null" json:"ukuran"`
	JumlahBarang  int         `gorm:"not null;check:jumlah_barang >= 0" json:"jumlah_barang"`
	Warna         *string     `json:"warna"`
	Catatan       *string     `json:"catatan"`
	Status        OrderStatus `gorm:"not null;default:'PENDING';index" json:"status"`

	// Material sourcing: exactly one of MaterialID / MaterialSendiri holds.
	MaterialSendiri bool  `gorm:"not null;default:false" json:"material_sendiri"`
	MaterialID      *uint `json:"material_id"`

	// Design sourcing: a custom reference file or a catalog model, never both.
	ReferensiCustom     bool    `gorm:"not null;default:false" json:"referensi_custom"`
	FileReferensiCustom *string `json:"file_referensi_custom"`
	ModelBajuID         *uint   `json:"model_baju_id"`

	TotalHarga    *Rupiah    `gorm:"type:numeric" json:"total_harga"` // set once, by the deal transition
	AlasanDitolak *string    `json:"alasan_ditolak"`
	DiterimaPada  *time.Time `json:"diterima_pada"`
	DitolakPada   *time.Time `json:"ditolak_pada"`

	UserID  uint  `gorm:"not null;index" json:"user_id"`
	User    User  `gorm:"foreignKey:UserID" json:"user"`
	AdminID *uint `gorm:"index" json:"admin_id"` // assigned when an admin first acts on the order
	Admin   *User `gorm:"foreignKey:AdminID" json:"admin,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the CustomOrder model
func (CustomOrder) TableName() string {
	return "custom_orders"
}
