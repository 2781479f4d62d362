// Package model defines the domain types shared by the sync engine.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product classification values.
const (
	ProductTypeMobile    = "mobile"
	ProductTypeAccessory = "accessory"
	ProductTypeGift      = "gift"
	ProductTypeBoxset    = "boxset"
)

// Stock unit types.
const (
	StockTypeIMEI   = "imei"
	StockTypeNormal = "normal"
)

// Purchase type tags.
const (
	PurchaseTypeCash        = "cash"
	PurchaseTypeInstallment = "installment"
	PurchaseTypePayOff      = "payoff-boxset"
)

// CatalogProduct is the authoritative product entry. The sync engine only
// reads it; catalog CRUD lives elsewhere.
type CatalogProduct struct {
	ID                     primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name                   string               `bson:"name" json:"name"`
	Price                  float64              `bson:"price" json:"price"`
	DownAmount             float64              `bson:"downAmount" json:"downAmount"`
	DownInstallmentCount   int                  `bson:"downInstallmentCount" json:"downInstallmentCount"`
	DownInstallment        float64              `bson:"downInstallment" json:"downInstallment"`
	CreditThreshold        float64              `bson:"creditThreshold" json:"creditThreshold"`
	PayUseInstallmentCount int                  `bson:"payUseInstallmentCount" json:"payUseInstallmentCount"`
	PayUseInstallment      float64              `bson:"payUseInstallment" json:"payUseInstallment"`
	PricePayOff            float64              `bson:"pricePayOff" json:"pricePayOff"`
	DocFee                 float64              `bson:"docFee" json:"docFee"`
	Image                  string               `bson:"image" json:"image"`
	PurchaseType           []string             `bson:"purchaseType" json:"purchaseType"`
	ProductType            string               `bson:"productType" json:"productType"`
	BoxsetType             string               `bson:"boxsetType,omitempty" json:"boxsetType,omitempty"`
	BoxsetProducts         []primitive.ObjectID `bson:"boxsetProducts" json:"boxsetProducts"`
	StockType              string               `bson:"stockType" json:"stockType"`
	CategoryName           string               `bson:"category_name" json:"categoryName"`
	CategoryGroup          string               `bson:"category_group" json:"categoryGroup"`
	UpdatedAt              time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// BranchStock is the denormalized per-branch stock line. The engine updates
// only the mirrored catalog fields, never identity, branch, or quantities.
type BranchStock struct {
	ID                     primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Branch                 string               `bson:"branch" json:"branch"`
	Name                   string               `bson:"name" json:"name"`
	Price                  float64              `bson:"price" json:"price"`
	DownAmount             float64              `bson:"downAmount" json:"downAmount"`
	DownInstallmentCount   int                  `bson:"downInstallmentCount" json:"downInstallmentCount"`
	DownInstallment        float64              `bson:"downInstallment" json:"downInstallment"`
	CreditThreshold        float64              `bson:"creditThreshold" json:"creditThreshold"`
	PayUseInstallmentCount int                  `bson:"payUseInstallmentCount" json:"payUseInstallmentCount"`
	PayUseInstallment      float64              `bson:"payUseInstallment" json:"payUseInstallment"`
	PricePayOff            float64              `bson:"pricePayOff" json:"pricePayOff"`
	DocFee                 float64              `bson:"docFee" json:"docFee"`
	Image                  string               `bson:"image" json:"image"`
	PurchaseType           []string             `bson:"purchaseType" json:"purchaseType"`
	ProductType            string               `bson:"productType" json:"productType"`
	BoxsetType             string               `bson:"boxsetType,omitempty" json:"boxsetType,omitempty"`
	BoxsetProducts         []primitive.ObjectID `bson:"boxsetProducts" json:"boxsetProducts"`
	StockType              string               `bson:"stockType" json:"stockType"`
	CategoryName           string               `bson:"category_name" json:"categoryName"`
	CategoryGroup          string               `bson:"category_group" json:"categoryGroup"`
}
