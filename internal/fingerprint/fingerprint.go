// Package fingerprint computes content hashes over the mutable subset of a
// catalog product, used to detect no-op resynchronization.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/fairyhunter13/catalog-stock-sync/internal/model"
)

// digestFields is the mutable field subset. Field order is fixed by the
// struct so the serialized form is stable across process restarts.
type digestFields struct {
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	CategoryName  string    `json:"category_name"`
	CategoryGroup string    `json:"category_group"`
	UpdatedAt     time.Time `json:"updatedAt"`
	ProductType   string    `json:"productType"`
}

// Compute returns the hex fingerprint of a product's mutable content. Two
// products with identical mutable content produce the same fingerprint.
func Compute(p model.CatalogProduct) string {
	b, _ := json.Marshal(digestFields{
		Name:          p.Name,
		Price:         p.Price,
		CategoryName:  p.CategoryName,
		CategoryGroup: p.CategoryGroup,
		UpdatedAt:     p.UpdatedAt.UTC(),
		ProductType:   p.ProductType,
	})
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}
