package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Recipe categories. Unknown values are rejected on the write path and
// simply match nothing on the read path.
const (
	CategoryBreakfast = "Breakfast"
	CategoryLunch     = "Lunch"
	CategoryDinner    = "Dinner"
	CategoryDessert   = "Dessert"
	CategorySnack     = "Snack"
	CategoryOther     = "Other"
)

// Recipe difficulty levels.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

var categories = map[string]bool{
	CategoryBreakfast: true,
	CategoryLunch:     true,
	CategoryDinner:    true,
	CategoryDessert:   true,
	CategorySnack:     true,
	CategoryOther:     true,
}

var difficulties = map[string]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

// ValidCategory reports whether v is a member of the category enum.
func ValidCategory(v string) bool {
	return categories[v]
}

// ValidDifficulty reports whether v is a member of the difficulty enum.
func ValidDifficulty(v string) bool {
	return difficulties[v]
}

// StringArray is a custom type for handling string arrays in JSONB
type StringArray []string

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

type Recipe struct {
	ID           uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	OwnerID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner        *User       `gorm:"foreignKey:OwnerID" json:"user,omitempty"`
	Title        string      `gorm:"size:255;not null" json:"title"`
	Description  string      `gorm:"type:text;not null" json:"description"`
	PrepTime     int         `gorm:"not null" json:"prep_time"`
	CookTime     int         `gorm:"not null" json:"cook_time"`
	Servings     int         `gorm:"not null" json:"servings"`
	Ingredients  StringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions StringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	Category     string      `gorm:"size:50;not null;default:'Other'" json:"category"`
	Difficulty   string      `gorm:"size:50;not null;default:'Medium'" json:"difficulty"`
	ImageURL     string      `gorm:"size:255" json:"image_url"`

	// Derived fields, populated from the like relation before serialization.
	Likes      []uuid.UUID `gorm:"-" json:"likes"`
	LikesCount int         `gorm:"-" json:"likes_count"`
	TotalTime  int         `gorm:"-" json:"total_time"`
}

// Hydrate fills the derived fields from the given like set.
func (r *Recipe) Hydrate(likes []uuid.UUID) {
	if likes == nil {
		likes = []uuid.UUID{}
	}
	r.Likes = likes
	r.LikesCount = len(likes)
	r.TotalTime = r.PrepTime + r.CookTime
}
