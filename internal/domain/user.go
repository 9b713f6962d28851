package domain

// User Model
type User struct {
	ID       uint   `gorm:"primaryKey"`                    // Primary key
	Username string `gorm:"size:150;uniqueIndex;not null"` // Unique username
	Email    string `gorm:"size:254;not null"`             // Contact email for notifications
	Password string `gorm:"size:255;not null"`             // Hashed password
}
