package core

import (
	"context"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/fox-one/pkg/store/db"
)

// AssetSet set of market positions a user participates in, one bit per
// Market.Position. A bit is set if and only if the matching balance
// (collateral share or scaled debt) is non-zero.
type AssetSet []uint64

const assetSetWordBits = 64

// Contains report whether position i is in the set
func (s AssetSet) Contains(i uint64) bool {
	word := i / assetSetWordBits
	if word >= uint64(len(s)) {
		return false
	}
	return s[word]&(1<<(i%assetSetWordBits)) != 0
}

// Set add position i
func (s *AssetSet) Set(i uint64) {
	word := i / assetSetWordBits
	for uint64(len(*s)) <= word {
		*s = append(*s, 0)
	}
	(*s)[word] |= 1 << (i % assetSetWordBits)
}

// Clear remove position i
func (s *AssetSet) Clear(i uint64) {
	word := i / assetSetWordBits
	if word >= uint64(len(*s)) {
		return
	}
	(*s)[word] &^= 1 << (i % assetSetWordBits)
}

// Union set union, neither operand is modified
func (s AssetSet) Union(o AssetSet) AssetSet {
	long, short := s, o
	if len(o) > len(s) {
		long, short = o, s
	}
	out := make(AssetSet, len(long))
	copy(out, long)
	for i, w := range short {
		out[i] |= w
	}
	return out
}

// Positions the set positions in ascending order
func (s AssetSet) Positions() []uint64 {
	var out []uint64
	for wi, w := range s {
		for b := uint64(0); b < assetSetWordBits; b++ {
			if w&(1<<b) != 0 {
				out = append(out, uint64(wi)*assetSetWordBits+b)
			}
		}
	}
	return out
}

// IsEmpty report whether no position is set
func (s AssetSet) IsEmpty() bool {
	for _, w := range s {
		if w != 0 {
			return false
		}
	}
	return true
}

// Value implement driver.Valuer, stored as big-endian hex words
func (s AssetSet) Value() (driver.Value, error) {
	buf := make([]byte, 0, len(s)*8)
	for _, w := range s {
		for shift := 56; shift >= 0; shift -= 8 {
			buf = append(buf, byte(w>>uint(shift)))
		}
	}
	return hex.EncodeToString(buf), nil
}

// Scan implement sql.Scanner
func (s *AssetSet) Scan(v interface{}) error {
	var raw string
	switch t := v.(type) {
	case string:
		raw = t
	case []byte:
		raw = string(t)
	case nil:
		*s = nil
		return nil
	default:
		return fmt.Errorf("asset set: unsupported column type %T", v)
	}

	if raw == "" {
		*s = nil
		return nil
	}

	buf, err := hex.DecodeString(raw)
	if err != nil {
		return err
	}
	if len(buf)%8 != 0 {
		return fmt.Errorf("asset set: truncated value")
	}

	out := make(AssetSet, 0, len(buf)/8)
	for i := 0; i < len(buf); i += 8 {
		var w uint64
		for j := 0; j < 8; j++ {
			w = w<<8 | uint64(buf[i+j])
		}
		out = append(out, w)
	}
	*s = out
	return nil
}

// User user model, holds the two participation bitmasks
type User struct {
	ID               uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID           string    `sql:"size:36;unique_index:user_idx" json:"user_id"`
	CollateralAssets AssetSet  `sql:"type:varchar(256)" json:"collateral_assets"`
	BorrowedAssets   AssetSet  `sql:"type:varchar(256)" json:"borrowed_assets"`
	Version          int64     `sql:"default:0" json:"version"`
	CreatedAt        time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IUserStore user store interface
type IUserStore interface {
	Save(ctx context.Context, tx *db.DB, user *User) error
	Find(ctx context.Context, userID string) (*User, error)
	All(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, tx *db.DB, user *User) error
}
