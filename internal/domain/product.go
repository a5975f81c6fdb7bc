package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product categories
const (
	CategoryTrucks         = "trucks"
	CategoryLegoSets       = "lego_sets"
	CategoryScooters       = "scooters"
	CategoryStuffedAnimals = "stuffed_animals"
	CategoryDolls          = "dolls"
	CategoryKitchenSets    = "kitchen_sets"
	CategoryJewelryKits    = "jewelry_kits"
)

// Categories lists every valid product category
var Categories = []string{
	CategoryTrucks,
	CategoryLegoSets,
	CategoryScooters,
	CategoryStuffedAnimals,
	CategoryDolls,
	CategoryKitchenSets,
	CategoryJewelryKits,
}

func IsCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}

// Product represents a toy in the catalog
type Product struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"size:150;not null;uniqueIndex" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Price         Money     `gorm:"type:numeric(10,2);not null" json:"price"`
	Category      string    `gorm:"size:32;not null;index" json:"category"`
	ImageURL      string    `gorm:"size:255" json:"imageUrl"`
	StockQuantity int       `gorm:"not null;default:0" json:"stockQuantity"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
