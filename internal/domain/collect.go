package domain

import "time"

// Occasion is the reason a collect is raised for
type Occasion string

// Supported occasions
const (
	OccasionBirthday Occasion = "birthday"
	OccasionWedding  Occasion = "wedding"
	OccasionCharity  Occasion = "charity"
	OccasionOther    Occasion = "other"
)

// Valid reports whether o is one of the supported occasions
func (o Occasion) Valid() bool {
	switch o {
	case OccasionBirthday, OccasionWedding, OccasionCharity, OccasionOther:
		return true
	}
	return false
}

// Collect Model
type Collect struct {
	ID              uint      `gorm:"primaryKey"`                                    // Primary key
	AuthorID        uint      `gorm:"not null;index"`                                // Foreign key to the author
	Author          User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // Author of the collect
	Title           string    `gorm:"size:255;not null"`                             // Title
	Occasion        Occasion  `gorm:"size:20;not null"`                              // Occasion
	Description     string    `gorm:"type:text"`                                     // Free text description
	TargetAmount    int64     `gorm:"not null;default:0"`                            // Amount the author wants to raise
	CollectedAmount int64     `gorm:"not null;default:0"`                            // Sum of payment amounts, server maintained
	DonorsCount     int64     `gorm:"not null;default:0"`                            // Number of payments, server maintained
	CoverImage      *string   `gorm:"size:512"`                                      // Optional cover image URL
	EndDate         time.Time `gorm:"not null"`                                      // Deadline
	Payments        []Payment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // Payments made to this collect
}
