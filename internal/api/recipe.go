package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platebook/backend/internal/middleware"
	"github.com/platebook/backend/internal/service"
	"github.com/platebook/backend/internal/types"
)

// RecipeHandler maps HTTP requests onto the recipe catalog operations.
type RecipeHandler struct {
	recipeService  service.IRecipeService
	storageService service.IStorageService
	tokenService   middleware.TokenValidator
	rateLimiter    *middleware.RateLimiter
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(recipeService service.IRecipeService, storageService service.IStorageService, tokenService middleware.TokenValidator, rateLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		recipeService:  recipeService,
		storageService: storageService,
		tokenService:   tokenService,
		rateLimiter:    rateLimiter,
	}
}

// RegisterRoutes registers the recipe routes. Reads are public; every
// mutation requires a verified caller identity.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/user", middleware.Auth(h.tokenService), h.ListUserRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", h.mutation(h.CreateRecipe)...)
		recipes.PUT("/:id", h.mutation(h.UpdateRecipe)...)
		recipes.DELETE("/:id", h.mutation(h.DeleteRecipe)...)
		recipes.PUT("/:id/like", middleware.Auth(h.tokenService), h.ToggleLike)
	}
}

// mutation builds the middleware chain for a write endpoint.
func (h *RecipeHandler) mutation(handler gin.HandlerFunc) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{middleware.Auth(h.tokenService)}
	if h.rateLimiter != nil {
		chain = append(chain, h.rateLimiter.Middleware())
	}
	return append(chain, handler)
}

// ListRecipes returns one page of the shared catalog. Supported query
// parameters: keyword, category, difficulty, pageNumber.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := service.RecipeFilter{
		Keyword:    c.Query("keyword"),
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
	}

	// pageNumber defaults to 1 when absent or non-numeric.
	page := 1
	if v := c.Query("pageNumber"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}

	result, err := h.recipeService.List(c.Request.Context(), filter, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRecipe returns a single recipe by id. No authorization check: reads
// are public.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// ListUserRecipes returns the caller's own recipes, most recent first.
func (h *RecipeHandler) ListUserRecipes(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	recipes, err := h.recipeService.ListByOwner(c.Request.Context(), caller)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, recipes)
}

// CreateRecipe creates a recipe owned by the caller. Accepts JSON or
// multipart form data; a multipart "image" part is resolved to a stored
// reference before the recipe is persisted.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	var req types.CreateRecipeRequest
	if err := h.bindRecipe(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	imageRef, err := h.resolveImage(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), caller, &req, imageRef)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe applies a partial update to a recipe the caller owns.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var req types.UpdateRecipeRequest
	if err := h.bindRecipe(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	imageRef, err := h.resolveImage(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), id, caller, &req, imageRef)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// DeleteRecipe removes a recipe the caller owns.
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), id, caller); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipe removed"})
}

// ToggleLike flips the caller's like on a recipe and returns the new like
// set and count.
func (h *RecipeHandler) ToggleLike(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	result, err := h.recipeService.ToggleLike(c.Request.Context(), id, caller)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// bindRecipe decodes a create/update body from JSON or multipart form data.
func (h *RecipeHandler) bindRecipe(c *gin.Context, req interface{}) error {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return c.ShouldBind(req)
	}
	return c.ShouldBindJSON(req)
}

// resolveImage uploads a multipart "image" part, if any, and returns the
// stored reference. Requests without an image part resolve to "".
func (h *RecipeHandler) resolveImage(c *gin.Context) (string, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return "", nil
	}

	file, err := c.FormFile("image")
	if err != nil {
		// No image part in the form.
		return "", nil
	}
	if h.storageService == nil {
		return "", errors.New("image storage is not configured")
	}

	return h.storageService.UploadRecipeImage(c.Request.Context(), file)
}

// respondError maps domain errors onto the HTTP taxonomy. Infrastructure
// failures are reported generically.
func (h *RecipeHandler) respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized to modify this recipe"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
	case errors.Is(err, service.ErrUnsupportedImageType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// callerID pulls the verified caller identity set by the auth middleware.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}
	return userID.(uuid.UUID), true
}
