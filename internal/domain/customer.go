package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a buyer; its address is the default for new orders but orders
// keep their own snapshot.
type Customer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Phone      string    `gorm:"size:20" json:"phone"`
	Street     string    `gorm:"size:200" json:"street"`
	City       string    `gorm:"size:100" json:"city"`
	State      string    `gorm:"size:100" json:"state"`
	PostalCode string    `gorm:"size:20" json:"postalCode"`
	Country    string    `gorm:"size:100" json:"country"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Customer) TableName() string {
	return "customers"
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
