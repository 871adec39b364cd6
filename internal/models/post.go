package models

import "time"

// StatusForSale is the status every new listing starts with. Status itself is
// free-form text; no transition table is enforced on updates.
const StatusForSale = "FOR_SALE"

// Post is a single sale listing owned by exactly one user. The owner never
// changes after creation.
type Post struct {
	ProductID string    `json:"productId" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"-" gorm:"index;type:varchar(36);not null"`
	User      User      `json:"-" gorm:"foreignKey:UserID"`
	Title     string    `json:"title" gorm:"not null"`
	Content   string    `json:"content" gorm:"not null"`
	Price     int64     `json:"price" gorm:"not null"`
	Status    string    `json:"status" gorm:"not null;default:FOR_SALE"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
