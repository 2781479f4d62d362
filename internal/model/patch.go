package model

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NormalizeName reduces a product name to its join form: surrounding
// whitespace trimmed, casefolded. Stock records are created independently of
// the catalog and only later reconciled by name, so this is the join key.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SyncPatch builds the field set mirrored from a catalog product onto
// matching branch stock records. boxsetType is set only for boxset products
// so stale boxset data never leaks onto non-boxset records.
func SyncPatch(p CatalogProduct) map[string]any {
	productType := p.ProductType
	if productType == "" {
		productType = ProductTypeMobile
	}
	stockType := p.StockType
	if stockType == "" {
		stockType = StockTypeIMEI
	}
	purchaseType := p.PurchaseType
	if purchaseType == nil {
		purchaseType = []string{}
	}
	boxsetProducts := p.BoxsetProducts
	if boxsetProducts == nil {
		boxsetProducts = []primitive.ObjectID{}
	}

	patch := map[string]any{
		"price":                  p.Price,
		"downAmount":             p.DownAmount,
		"downInstallmentCount":   p.DownInstallmentCount,
		"downInstallment":        p.DownInstallment,
		"creditThreshold":        p.CreditThreshold,
		"payUseInstallmentCount": p.PayUseInstallmentCount,
		"payUseInstallment":      p.PayUseInstallment,
		"pricePayOff":            p.PricePayOff,
		"docFee":                 p.DocFee,
		"image":                  p.Image,
		"purchaseType":           purchaseType,
		"productType":            productType,
		"boxsetProducts":         boxsetProducts,
		"stockType":              stockType,
		"category_name":          p.CategoryName,
		"category_group":         p.CategoryGroup,
	}
	if productType == ProductTypeBoxset && p.BoxsetType != "" {
		patch["boxsetType"] = p.BoxsetType
	}
	return patch
}

// StockUpdated describes a completed sync write, published to the event sink.
type StockUpdated struct {
	Kind      string         `json:"kind"`
	ProductID string         `json:"product_id,omitempty"`
	StockID   string         `json:"stock_id,omitempty"`
	Fields    map[string]any `json:"fields"`
}
