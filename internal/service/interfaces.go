package service

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/platebook/backend/internal/models"
	"github.com/platebook/backend/internal/types"
)

// IRecipeService defines the interface for recipe catalog operations
type IRecipeService interface {
	List(ctx context.Context, filter RecipeFilter, page int) (*RecipePage, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]*models.Recipe, error)
	Create(ctx context.Context, owner uuid.UUID, req *types.CreateRecipeRequest, imageRef string) (*models.Recipe, error)
	Update(ctx context.Context, id, caller uuid.UUID, req *types.UpdateRecipeRequest, imageRef string) (*models.Recipe, error)
	Delete(ctx context.Context, id, caller uuid.UUID) error
	ToggleLike(ctx context.Context, id, caller uuid.UUID) (*LikeResult, error)
}

// IStorageService defines the interface for upload resolution
type IStorageService interface {
	UploadRecipeImage(ctx context.Context, file *multipart.FileHeader) (string, error)
}
