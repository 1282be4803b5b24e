package models

import (
	"database/sql/driver"
	"fmt"
	"math/big"
)

// Rupiah is an arbitrary-precision, non-negative monetary amount. Amounts are
// stored and transmitted as integers, never as floating point, so values above
// 2^53 survive the round trip through JSON and the database untouched.
//
// The embedded big.Int provides JSON encoding as a plain number.
type Rupiah struct {
	big.Int
}

// NewRupiah returns the amount v as a Rupiah.
func NewRupiah(v uint64) *Rupiah {
	r := &Rupiah{}
	r.SetUint64(v)
	return r
}

// ParseRupiah parses a base-10 amount string.
func ParseRupiah(s string) (*Rupiah, error) {
	r := &Rupiah{}
	if _, ok := r.SetString(s, 10); !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if r.Sign() < 0 {
		return nil, fmt.Errorf("amount %q must not be negative", s)
	}
	return r, nil
}

// IsPositive reports whether the amount is strictly greater than zero.
func (r *Rupiah) IsPositive() bool {
	return r != nil && r.Sign() > 0
}

// Value implements driver.Valuer; the amount is written as a numeric string.
func (r Rupiah) Value() (driver.Value, error) {
	return r.String(), nil
}

// Scan implements sql.Scanner for numeric, text and integer column values.
func (r *Rupiah) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		r.SetInt64(0)
		return nil
	case int64:
		r.SetInt64(v)
		return nil
	case []byte:
		return r.scanString(string(v))
	case string:
		return r.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Rupiah", src)
	}
}

func (r *Rupiah) scanString(s string) error {
	if _, ok := r.SetString(s, 10); !ok {
		return fmt.Errorf("cannot scan %q into Rupiah", s)
	}
	return nil
}
