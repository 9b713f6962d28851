package domain

import "time"

// Payment Model
type Payment struct {
	ID        uint      `gorm:"primaryKey"`                                    // Primary key
	UserID    uint      `gorm:"not null;index"`                                // Foreign key to the donor
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // Donor
	CollectID uint      `gorm:"not null;index"`                                // Foreign key to the collect
	Collect   *Collect  `gorm:"foreignKey:CollectID"`                          // Collect the payment belongs to
	Amount    int64     `gorm:"not null;default:0"`                            // Donated amount
	CreatedAt time.Time `gorm:"autoCreateTime"`                                // Set once at creation
}
