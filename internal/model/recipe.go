package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// JSONBStringArray stores a string slice as a JSONB column.
type JSONBStringArray []string

// Value implements the driver.Valuer interface.
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface.
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
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

// RecipeIngredient is one item+amount pair inside a recipe document.
type RecipeIngredient struct {
	Item      string `json:"item"`
	Amount    string `json:"amount"`
	Essential bool   `json:"essential"`
}

// JSONBIngredients stores the ingredient list as a JSONB column.
type JSONBIngredients []RecipeIngredient

func (a JSONBIngredients) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

func (a *JSONBIngredients) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBIngredients{}
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

// JSONBStringMap stores a string map (nutritional info) as a JSONB column.
type JSONBStringMap map[string]string

func (m JSONBStringMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

func (m *JSONBStringMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONBStringMap{}
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

	return json.Unmarshal(bytes, m)
}

// Recipe is the persisted recipe document.
type Recipe struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
	Name            string           `gorm:"size:255;not null" json:"name"`
	Description     string           `gorm:"type:text" json:"description"`
	PrepTime        string           `gorm:"size:50" json:"prep_time"`
	CookTime        string           `gorm:"size:50" json:"cook_time"`
	Servings        int              `json:"servings"`
	Difficulty      string           `gorm:"size:20" json:"difficulty"`
	Cuisine         string           `gorm:"size:50" json:"cuisine"`
	MealType        string           `gorm:"size:50" json:"meal_type"`
	Ingredients     JSONBIngredients `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions    JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	NutritionalInfo JSONBStringMap   `gorm:"type:jsonb;not null;default:'{}'" json:"nutritional_info"`
	ImageURL        string           `gorm:"size:512" json:"image_url,omitempty"`
	Embedding       pgvector.Vector  `gorm:"type:vector(3)" json:"-"`
}

// SavedRecipe links a user to a recipe they bookmarked.
type SavedRecipe struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	RecipeID uuid.UUID `gorm:"type:uuid;not null;index" json:"recipe_id"`
	SavedAt  time.Time `gorm:"autoCreateTime" json:"saved_at"`
}
