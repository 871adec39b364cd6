package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"pasar/internal/apperrors"
	"pasar/internal/handlers"
	"pasar/internal/middleware"
	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds a Fiber app over a fresh in-memory SQLite database with all
// handlers and services wired, mirroring main.go. Each caller passes a unique
// database name so tests stay isolated.
func setupApp(dbName string) (*fiber.App, error) {
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Post{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	postRepo := repositories.NewGORMPostRepository(db)

	authService := services.NewAuthService(userRepo, jwtSecret)
	postService := services.NewPostService(postRepo, nil) // nil for RabbitMQ client

	authHandler := handlers.NewAuthHandler(authService)
	postHandler := handlers.NewPostHandler(postService, middleware.AuthRequired(authService))

	app := fiber.New(fiber.Config{
		ErrorHandler: apperrors.Handler(true),
	})

	api := app.Group("/api")
	authHandler.RegisterRoutes(api)
	postHandler.RegisterRoutes(api)

	return app, nil
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// registerAndLogin creates an account and returns a bearer token for it.
func registerAndLogin(t *testing.T, app *fiber.App, username, nickname string) string {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"nickname": nickname,
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp map[string]string
	decodeBody(t, resp, &loginResp)
	assert.NotEmpty(t, loginResp["token"])
	return loginResp["token"]
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, err := setupApp("auth_flow")
	assert.NoError(t, err)

	userToRegister := map[string]string{
		"username": "testuser",
		"nickname": "Tester",
		"password": "password123",
	}
	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", userToRegister)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var registerResp map[string]interface{}
	decodeBody(t, resp, &registerResp)
	assert.Equal(t, "User registered successfully", registerResp["message"])

	// Duplicate username
	resp = doJSON(t, app, http.MethodPost, "/api/auth/register", "", userToRegister)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Login
	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "testuser",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp map[string]string
	decodeBody(t, resp, &loginResp)
	assert.NotEmpty(t, loginResp["token"])

	// Wrong password
	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "testuser",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

// TestListingLifecycle walks a full listing through its life: created by the
// owner, visible with the owner's nickname, protected from another user,
// updated and finally deleted by the owner.
func TestListingLifecycle(t *testing.T) {
	app, err := setupApp("lifecycle")
	assert.NoError(t, err)

	tokenA := registerAndLogin(t, app, "usera", "Alice")
	tokenB := registerAndLogin(t, app, "userb", "Bob")

	// Create as A
	resp := doJSON(t, app, http.MethodPost, "/api/posts", tokenA, map[string]interface{}{
		"title":   "Bike",
		"content": "Used bike",
		"price":   100,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var createResp map[string]string
	decodeBody(t, resp, &createResp)
	assert.Equal(t, "Sale listing registered", createResp["message"])

	// List includes it with A's nickname and no content field
	resp = doJSON(t, app, http.MethodGet, "/api/posts", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listings []map[string]interface{}
	decodeBody(t, resp, &listings)
	assert.Len(t, listings, 1)
	assert.Equal(t, "Bike", listings[0]["title"])
	assert.Equal(t, "Alice", listings[0]["nickname"])
	assert.Equal(t, models.StatusForSale, listings[0]["status"])
	assert.NotContains(t, listings[0], "content")

	productID, ok := listings[0]["productId"].(string)
	assert.True(t, ok)
	assert.NotEmpty(t, productID)

	updatePayload := map[string]interface{}{
		"title":   "Bike v2",
		"content": "Tuned up",
		"status":  "SOLD_OUT",
		"price":   90,
	}

	// Update as B fails with 403 and leaves the listing unchanged
	resp = doJSON(t, app, http.MethodPut, "/api/post/"+productID, tokenB, updatePayload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/post/"+productID, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var detail map[string]interface{}
	decodeBody(t, resp, &detail)
	assert.Equal(t, "Bike", detail["title"])
	assert.Equal(t, float64(100), detail["price"])

	// Update as A succeeds
	resp = doJSON(t, app, http.MethodPut, "/api/post/"+productID, tokenA, updatePayload)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/post/"+productID, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &detail)
	assert.Equal(t, "Bike v2", detail["title"])
	assert.Equal(t, "Tuned up", detail["content"])
	assert.Equal(t, "SOLD_OUT", detail["status"])
	assert.Equal(t, float64(90), detail["price"])
	assert.Equal(t, "Alice", detail["nickname"])

	// Delete as B fails with 403 and the listing stays retrievable
	resp = doJSON(t, app, http.MethodDelete, "/api/post/"+productID, tokenB, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/post/"+productID, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Delete as A succeeds and the listing is gone
	resp = doJSON(t, app, http.MethodDelete, "/api/post/"+productID, tokenA, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/post/"+productID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestListEmptyStoreIsNotFound(t *testing.T) {
	app, err := setupApp("empty_store")
	assert.NoError(t, err)

	// An empty collection is reported as an error, not an empty array
	resp := doJSON(t, app, http.MethodGet, "/api/posts", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, "No listings exist", body["message"])
}

func TestListSortDirections(t *testing.T) {
	app, err := setupApp("sorting")
	assert.NoError(t, err)

	token := registerAndLogin(t, app, "seller", "Seller")
	for _, title := range []string{"first", "second"} {
		resp := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]interface{}{
			"title":   title,
			"content": "c",
			"price":   10,
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	var listings []map[string]interface{}
	resp := doJSON(t, app, http.MethodGet, "/api/posts?sort=asc", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &listings)
	assert.Equal(t, "first", listings[0]["title"])

	resp = doJSON(t, app, http.MethodGet, "/api/posts?sort=sideways", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateValidation(t *testing.T) {
	app, err := setupApp("validation")
	assert.NoError(t, err)

	token := registerAndLogin(t, app, "seller", "Seller")

	badPayloads := []map[string]interface{}{
		{"content": "no title", "price": 10},
		{"title": "no content", "price": 10},
		{"title": "no price", "content": "c"},
		{"title": "negative", "content": "c", "price": -5},
		{"title": "wrong type", "content": "c", "price": "ten"},
	}
	for _, payload := range badPayloads {
		resp := doJSON(t, app, http.MethodPost, "/api/posts", token, payload)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "payload %v", payload)
		resp.Body.Close()
	}

	// Nothing was stored
	resp := doJSON(t, app, http.MethodGet, "/api/posts", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestMutationsRequireAuth(t *testing.T) {
	app, err := setupApp("auth_required")
	assert.NoError(t, err)

	resp := doJSON(t, app, http.MethodPost, "/api/posts", "", map[string]interface{}{
		"title":   "Bike",
		"content": "Used bike",
		"price":   100,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPut, "/api/post/some-id", "", map[string]interface{}{
		"title":   "Bike",
		"content": "Used bike",
		"price":   100,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, "/api/post/some-id", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
