package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/platebook/backend/internal/models"
	"github.com/platebook/backend/internal/service"
)

func setupRecipeTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *service.TokenService) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Recipe{}, &models.RecipeLike{}))

	tokens := service.NewTokenService("test-secret")
	handler := NewRecipeHandler(service.NewRecipeService(db), nil, tokens, nil)

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router, db, tokens
}

func createTestUserAndToken(t *testing.T, db *gorm.DB, tokens *service.TokenService, name string) (*models.User, string) {
	user := models.User{
		ID:    uuid.New(),
		Name:  name,
		Email: name + "@example.com",
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := tokens.GenerateToken(user.ID)
	require.NoError(t, err)
	return &user, token
}

func validRecipeBody() map[string]interface{} {
	return map[string]interface{}{
		"title":        "Chocolate Cake",
		"description":  "A rich chocolate cake",
		"prep_time":    20,
		"cook_time":    45,
		"servings":     8,
		"ingredients":  []string{"flour", "cocoa"},
		"instructions": []string{"mix", "bake"},
		"category":     "Dessert",
		"difficulty":   "Medium",
	}
}

func postRecipe(t *testing.T, router *gin.Engine, token string, body map[string]interface{}) *httptest.ResponseRecorder {
	jsonData, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/recipes", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateRecipe(t *testing.T) {
	router, db, tokens := setupRecipeTestRouter(t)
	user, token := createTestUserAndToken(t, db, tokens, "alice")

	w := postRecipe(t, router, token, validRecipeBody())
	assert.Equal(t, 201, w.Code)

	var recipe models.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))
	assert.Equal(t, user.ID, recipe.OwnerID)
	assert.Equal(t, "Chocolate Cake", recipe.Title)
	assert.Empty(t, recipe.Likes)
	assert.Equal(t, 65, recipe.TotalTime)
}

func TestCreateRecipeScalarIngredients(t *testing.T) {
	router, db, tokens := setupRecipeTestRouter(t)
	_, token := createTestUserAndToken(t, db, tokens, "alice")

	body := validRecipeBody()
	body["ingredients"] = "flour"

	w := postRecipe(t, router, token, body)
	assert.Equal(t, 201, w.Code)

	var recipe models.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))
	assert.Equal(t, models.StringArray{"flour"}, recipe.Ingredients)
}

func TestCreateRecipeUnauthenticated(t *testing.T) {
	router, _, _ := setupRecipeTestRouter(t)

	w := postRecipe(t, router, "", validRecipeBody())
	assert.Equal(t, 401, w.Code)
}

func TestCreateRecipeValidationError(t *testing.T) {
	router, db, tokens := setupRecipeTestRouter(t)
	_, token := createTestUserAndToken(t, db, tokens, "alice")

	body := validRecipeBody()
	delete(body, "title")

	w := postRecipe(t, router, token, body)
	assert.Equal(t, 400, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "title", response["field"])
}

func TestListRecipesPagination(t *testing.T) {
	router, db, tokens := setupRecipeTestRouter(t)
	_, token := createTestUserAndToken(t, db, tokens, "alice")

	for i := 0; i < 12; i++ {
		body := validRecipeBody()
		body["title"] = fmt.Sprintf("Recipe %d", i)
		w := postRecipe(t, router, token, body)
		require.Equal(t, 201, w.Code)
	}

	req := httptest.NewRequest("GET", "/api/v1/recipes?pageNumber=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)

	var response struct {
		Recipes []models.Recipe `json:"recipes"`
		Page    int             `json:"page"`
		Pages   int             `json:"pages"`
		Total   int64           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Recipes, 3)
	assert.Equal(t, 2, response.Page)
	assert.Equal(t, 2, response.Pages)
	assert.Equal(t, int64(12), response.Total)

	// Non-numeric page numbers fall back to the first page.
	req = httptest.NewRequest("GET", "/api/v1/recipes?pageNumber=abc", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Page)
	assert.Len(t, response.Recipes, 9)
}

func TestListRecipesFiltered(t *testing.T) {
	router, db, tokens := setupRecipeTestRouter(t)
	_, token := createTestUserAndToken(t, db, tokens, "alice")

	body := validRecipeBody()
	body["title"] = "Beef Stew"
	body["category"] = "Dinner"
	require.Equal(t, 201, postRecipe(t, router, token, body).Code)
	require.Equal(t, 201, postRecipe(t, router, token, validRecipeBody()).Code)

	req := httptest.NewRequest("GET", "/api/v1/recipes?category=Dinner&keyword=stew", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)

	var response struct {
		Recipes []models.Recipe `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Recipes, 1)
	assert.Equal(t, "Beef Stew", response.Recipes[0].Title)
}

func TestGetRecipePublic(t *testing.T) {
	router, db, tokens := setupRecipeTestRouter(t)
	_, token := createTestUserAndToken(t, db, tokens, "alice")

	w := postRecipe(t, router, token, validRecipeBody())
	require.Equal(t, 201, w.Code)

	var recipe models.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))

	// Reads need no token.
	req := httptest.NewRequest("GET", "/api/v1/recipes/"+recipe.ID.String(), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)

	var fetched models.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	require.NotNil(t, fetched.Owner)
	assert.Equal(t, "alice", fetched.Owner.Name)
}

func TestGetRecipeNotFound(t *testing.T) {
	router, _, _ := setupRecipeTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/recipes/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, 404, w.Code)
}

func TestUpdateRecipeByNonOwner(t *testing.T) {
	router, db, tokens := setupRecipeTestRouter(t)
	_, aliceToken := createTestUserAndToken(t, db, tokens, "alice")
	_, bobToken := createTestUserAndToken(t, db, tokens, "bob")

	w := postRecipe(t, router, aliceToken, validRecipeBody())
	require.Equal(t, 201, w.Code)

	var recipe models.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))

	update, err := json.Marshal(map[string]interface{}{"title": "Hijacked"})
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", "/api/v1/recipes/"+recipe.ID.String(), bytes.NewBuffer(update))
	req.Header.Set("Authorization", "Bearer "+bobToken)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, 401, w.Code)
}

func TestDeleteRecipe(t *testing.T) {
	router, db, tokens := setupRecipeTestRouter(t)
	_, token := createTestUserAndToken(t, db, tokens, "alice")

	w := postRecipe(t, router, token, validRecipeBody())
	require.Equal(t, 201, w.Code)

	var recipe models.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))

	req := httptest.NewRequest("DELETE", "/api/v1/recipes/"+recipe.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)

	req = httptest.NewRequest("GET", "/api/v1/recipes/"+recipe.ID.String(), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, 404, w.Code)
}

func TestToggleLikeEndpoint(t *testing.T) {
	router, db, tokens := setupRecipeTestRouter(t)
	_, aliceToken := createTestUserAndToken(t, db, tokens, "alice")
	bob, bobToken := createTestUserAndToken(t, db, tokens, "bob")

	w := postRecipe(t, router, aliceToken, validRecipeBody())
	require.Equal(t, 201, w.Code)

	var recipe models.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))

	like := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("PUT", "/api/v1/recipes/"+recipe.ID.String()+"/like", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w = like(bobToken)
	assert.Equal(t, 200, w.Code)

	var result service.LikeResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.LikesCount)
	assert.Contains(t, result.Likes, bob.ID)

	// Second toggle removes the like again.
	w = like(bobToken)
	assert.Equal(t, 200, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 0, result.LikesCount)
}

func TestListUserRecipes(t *testing.T) {
	router, db, tokens := setupRecipeTestRouter(t)
	alice, aliceToken := createTestUserAndToken(t, db, tokens, "alice")
	_, bobToken := createTestUserAndToken(t, db, tokens, "bob")

	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"Older", "Newer"} {
		recipe := models.Recipe{
			ID:           uuid.New(),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
			OwnerID:      alice.ID,
			Title:        title,
			Description:  "d",
			Ingredients:  models.StringArray{"x"},
			Instructions: models.StringArray{"y"},
			Category:     models.CategoryOther,
			Difficulty:   models.DifficultyMedium,
		}
		require.NoError(t, db.Create(&recipe).Error)
	}
	require.Equal(t, 201, postRecipe(t, router, bobToken, validRecipeBody()).Code)

	req := httptest.NewRequest("GET", "/api/v1/recipes/user", nil)
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)

	var recipes []models.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipes))
	require.Len(t, recipes, 2)
	assert.Equal(t, "Newer", recipes[0].Title)
	assert.Equal(t, "Older", recipes[1].Title)
}
