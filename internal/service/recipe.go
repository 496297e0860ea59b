package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platebook/backend/internal/models"
	"github.com/platebook/backend/internal/types"
)

// RecipePageSize is the fixed page size for catalog listings.
const RecipePageSize = 9

var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrNotOwner       = errors.New("not authorized for this recipe")
)

// ValidationError reports a missing or malformed field on a write request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RecipeFilter holds the optional catalog search criteria. Absent criteria
// impose no constraint; unknown category or difficulty values match nothing
// rather than failing the request.
type RecipeFilter struct {
	Keyword    string
	Category   string
	Difficulty string
}

// Apply composes the supplied criteria onto the query. Keyword is a
// case-insensitive substring match on the title.
func (f RecipeFilter) Apply(query *gorm.DB) *gorm.DB {
	if f.Keyword != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(f.Keyword)+"%")
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Difficulty != "" {
		query = query.Where("difficulty = ?", f.Difficulty)
	}
	return query
}

// RecipePage is one page of catalog results.
type RecipePage struct {
	Recipes    []*models.Recipe `json:"recipes"`
	Page       int              `json:"page"`
	TotalPages int              `json:"pages"`
	TotalCount int64            `json:"total"`
}

// LikeResult is the outcome of a like toggle: the new like set and its
// cardinality, so callers never recompute either.
type LikeResult struct {
	Likes      []uuid.UUID `json:"likes"`
	LikesCount int         `json:"likes_count"`
}

// RecipeService handles recipe catalog operations
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// List returns one page of the catalog matching filter, most recent first.
// The total count is taken against the full filtered set before pagination.
// Pages below 1 are passed through unclamped; GORM drops non-positive
// offsets, so such requests resolve to the first page.
func (s *RecipeService) List(ctx context.Context, filter RecipeFilter, page int) (*RecipePage, error) {
	var count int64
	if err := filter.Apply(s.db.WithContext(ctx).Model(&models.Recipe{})).Count(&count).Error; err != nil {
		return nil, err
	}

	var recipes []*models.Recipe
	err := filter.Apply(s.db.WithContext(ctx)).
		Preload("Owner").
		Order("created_at DESC").
		Limit(RecipePageSize).
		Offset((page - 1) * RecipePageSize).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	if recipes == nil {
		recipes = []*models.Recipe{}
	}
	if err := s.hydrateLikes(ctx, recipes); err != nil {
		return nil, err
	}

	return &RecipePage{
		Recipes:    recipes,
		Page:       page,
		TotalPages: int(math.Ceil(float64(count) / float64(RecipePageSize))),
		TotalCount: count,
	}, nil
}

// Get retrieves a recipe by ID. Reads are public.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Preload("Owner").First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	likes, err := s.likesFor(s.db.WithContext(ctx), recipe.ID)
	if err != nil {
		return nil, err
	}
	recipe.Hydrate(likes)
	return &recipe, nil
}

// ListByOwner returns all recipes created by owner, most recent first,
// unpaginated.
func (s *RecipeService) ListByOwner(ctx context.Context, owner uuid.UUID) ([]*models.Recipe, error) {
	var recipes []*models.Recipe
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", owner).
		Order("created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	if recipes == nil {
		recipes = []*models.Recipe{}
	}
	if err := s.hydrateLikes(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// Create validates and persists a new recipe. The owner is bound to the
// caller's identity, never taken from the request body, and the like set
// starts empty.
func (s *RecipeService) Create(ctx context.Context, owner uuid.UUID, req *types.CreateRecipeRequest, imageRef string) (*models.Recipe, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, &ValidationError{Field: "title", Message: "please add a title"}
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, &ValidationError{Field: "description", Message: "please add a description"}
	}
	if req.PrepTime == nil || *req.PrepTime < 0 {
		return nil, &ValidationError{Field: "prep_time", Message: "please add preparation time"}
	}
	if req.CookTime == nil || *req.CookTime < 0 {
		return nil, &ValidationError{Field: "cook_time", Message: "please add cooking time"}
	}
	if req.Servings == nil || *req.Servings < 0 {
		return nil, &ValidationError{Field: "servings", Message: "please add number of servings"}
	}

	ingredients := normalizeList(req.Ingredients)
	if len(ingredients) == 0 {
		return nil, &ValidationError{Field: "ingredients", Message: "please add at least one ingredient"}
	}
	instructions := normalizeList(req.Instructions)
	if len(instructions) == 0 {
		return nil, &ValidationError{Field: "instructions", Message: "please add at least one instruction step"}
	}

	category := models.CategoryOther
	if req.Category != "" {
		if !models.ValidCategory(req.Category) {
			return nil, &ValidationError{Field: "category", Message: "unknown category"}
		}
		category = req.Category
	}
	difficulty := models.DifficultyMedium
	if req.Difficulty != "" {
		if !models.ValidDifficulty(req.Difficulty) {
			return nil, &ValidationError{Field: "difficulty", Message: "unknown difficulty"}
		}
		difficulty = req.Difficulty
	}

	recipe := models.Recipe{
		ID:           uuid.New(),
		OwnerID:      owner,
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		PrepTime:     *req.PrepTime,
		CookTime:     *req.CookTime,
		Servings:     *req.Servings,
		Ingredients:  ingredients,
		Instructions: instructions,
		Category:     category,
		Difficulty:   difficulty,
		ImageURL:     imageRef,
	}

	if err := s.db.WithContext(ctx).Create(&recipe).Error; err != nil {
		return nil, err
	}

	recipe.Hydrate(nil)
	return &recipe, nil
}

// Update overwrites the stored fields that are present and non-empty in req
// and leaves the rest unchanged; an empty ingredient or instruction list
// means "no change requested", never "clear". The ownership check precedes
// any mutation. The recipe's id and owner are immutable.
func (s *RecipeService) Update(ctx context.Context, id, caller uuid.UUID, req *types.UpdateRecipeRequest, imageRef string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if err := ownedBy(&recipe, caller); err != nil {
		return nil, err
	}

	if req.Category != "" && !models.ValidCategory(req.Category) {
		return nil, &ValidationError{Field: "category", Message: "unknown category"}
	}
	if req.Difficulty != "" && !models.ValidDifficulty(req.Difficulty) {
		return nil, &ValidationError{Field: "difficulty", Message: "unknown difficulty"}
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		recipe.Title = title
	}
	if description := strings.TrimSpace(req.Description); description != "" {
		recipe.Description = description
	}
	if req.PrepTime != nil && *req.PrepTime >= 0 {
		recipe.PrepTime = *req.PrepTime
	}
	if req.CookTime != nil && *req.CookTime >= 0 {
		recipe.CookTime = *req.CookTime
	}
	if req.Servings != nil && *req.Servings >= 0 {
		recipe.Servings = *req.Servings
	}
	if ingredients := normalizeList(req.Ingredients); len(ingredients) > 0 {
		recipe.Ingredients = ingredients
	}
	if instructions := normalizeList(req.Instructions); len(instructions) > 0 {
		recipe.Instructions = instructions
	}
	if req.Category != "" {
		recipe.Category = req.Category
	}
	if req.Difficulty != "" {
		recipe.Difficulty = req.Difficulty
	}
	if imageRef != "" {
		recipe.ImageURL = imageRef
	}

	if err := s.db.WithContext(ctx).Save(&recipe).Error; err != nil {
		return nil, err
	}

	likes, err := s.likesFor(s.db.WithContext(ctx), recipe.ID)
	if err != nil {
		return nil, err
	}
	recipe.Hydrate(likes)
	return &recipe, nil
}

// Delete removes a recipe and its like relation. Only the owner may delete;
// deletion is terminal.
func (s *RecipeService) Delete(ctx context.Context, id, caller uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}

		if err := ownedBy(&recipe, caller); err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", id).Error
	})
}

// ToggleLike flips caller's membership in the recipe's like set: a member
// is removed, a non-member is added. Toggling twice from any state returns
// to that state. Each like is its own row, so toggles from different
// callers are serialized by the store and never lost. Any authenticated
// user may like any recipe, the owner included.
func (s *RecipeService) ToggleLike(ctx context.Context, id, caller uuid.UUID) (*LikeResult, error) {
	var result LikeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Select("id").First(&recipe, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}

		res := tx.Where("recipe_id = ? AND user_id = ?", id, caller).Delete(&models.RecipeLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(&models.RecipeLike{ID: uuid.New(), RecipeID: id, UserID: caller}).Error; err != nil {
				return err
			}
		}

		likes, err := s.likesFor(tx, id)
		if err != nil {
			return err
		}
		result = LikeResult{Likes: likes, LikesCount: len(likes)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ownedBy gates mutations on the recipe's owning identity.
func ownedBy(recipe *models.Recipe, caller uuid.UUID) error {
	if recipe.OwnerID != caller {
		return ErrNotOwner
	}
	return nil
}

// normalizeList trims entries and drops empty ones.
func normalizeList(in types.StringList) models.StringArray {
	out := make(models.StringArray, 0, len(in))
	for _, v := range in {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// likesFor returns the like set of one recipe.
func (s *RecipeService) likesFor(tx *gorm.DB, id uuid.UUID) ([]uuid.UUID, error) {
	var rows []models.RecipeLike
	if err := tx.Where("recipe_id = ?", id).Find(&rows).Error; err != nil {
		return nil, err
	}
	likes := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		likes = append(likes, row.UserID)
	}
	return likes, nil
}

// hydrateLikes loads the like relation for a batch of recipes in one query.
func (s *RecipeService) hydrateLikes(ctx context.Context, recipes []*models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}

	var rows []models.RecipeLike
	if err := s.db.WithContext(ctx).Where("recipe_id IN ?", ids).Find(&rows).Error; err != nil {
		return err
	}

	byRecipe := make(map[uuid.UUID][]uuid.UUID, len(recipes))
	for _, row := range rows {
		byRecipe[row.RecipeID] = append(byRecipe[row.RecipeID], row.UserID)
	}
	for _, r := range recipes {
		r.Hydrate(byRecipe[r.ID])
	}
	return nil
}
