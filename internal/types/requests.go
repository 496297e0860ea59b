package types

import "encoding/json"

// StringList accepts either a single JSON string or an array of strings and
// normalizes both to a slice. Clients submit ingredients and instructions in
// either shape, so the coercion happens once at the decode boundary.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = StringList{one}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = StringList(many)
	return nil
}

// CreateRecipeRequest represents the request body for creating a recipe.
// Timing and serving fields are pointers so that an explicit zero is
// distinguishable from an absent field.
type CreateRecipeRequest struct {
	Title        string     `json:"title" form:"title"`
	Description  string     `json:"description" form:"description"`
	PrepTime     *int       `json:"prep_time" form:"prep_time"`
	CookTime     *int       `json:"cook_time" form:"cook_time"`
	Servings     *int       `json:"servings" form:"servings"`
	Ingredients  StringList `json:"ingredients" form:"ingredients"`
	Instructions StringList `json:"instructions" form:"instructions"`
	Category     string     `json:"category" form:"category"`
	Difficulty   string     `json:"difficulty" form:"difficulty"`
}

// UpdateRecipeRequest represents the request body for updating a recipe.
// Absent or empty fields leave the stored value unchanged.
type UpdateRecipeRequest struct {
	Title        string     `json:"title" form:"title"`
	Description  string     `json:"description" form:"description"`
	PrepTime     *int       `json:"prep_time" form:"prep_time"`
	CookTime     *int       `json:"cook_time" form:"cook_time"`
	Servings     *int       `json:"servings" form:"servings"`
	Ingredients  StringList `json:"ingredients" form:"ingredients"`
	Instructions StringList `json:"instructions" form:"instructions"`
	Category     string     `json:"category" form:"category"`
	Difficulty   string     `json:"difficulty" form:"difficulty"`
}
