package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"walletshop/internal/handlers"
	"walletshop/internal/middleware"
	"walletshop/internal/models"
	"walletshop/internal/repositories"
	"walletshop/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testJWTSecret = "test_jwt_secret"

type testEnv struct {
	app         *fiber.App
	authService *services.AuthService
	userRepo    repositories.UserRepository
	productRepo repositories.ProductRepository
}

// setupTestApp wires the full HTTP surface against a throwaway SQLite file,
// mirroring the production wiring minus the broker.
func setupTestApp(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "walletshop_test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.CartItem{},
		&models.CustomizationOption{},
	))

	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	customizationRepo := repositories.NewGORMCustomizationRepository(db)

	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, userRepo, nil, nil)
	authService := services.NewAuthService(userRepo, testJWTSecret, nil)
	cartService := services.NewCartService(cartRepo, productRepo)
	customizationService := services.NewCustomizationService(customizationRepo)
	userService := services.NewUserService(userRepo)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	adminOnly := middleware.AdminRequired()

	handlers.NewProductHandler(productService).RegisterRoutes(protected, adminOnly)
	handlers.NewOrderHandler(orderService, cartService).RegisterRoutes(protected)
	handlers.NewCartHandler(cartService).RegisterRoutes(protected)
	handlers.NewCustomizationHandler(customizationService).RegisterRoutes(protected, adminOnly)
	handlers.NewUserHandler(userService).RegisterRoutes(protected, adminOnly)

	env := &testEnv{
		app:         app,
		authService: authService,
		userRepo:    userRepo,
		productRepo: productRepo,
	}
	env.seedAdmin(t)
	return env
}

// seedAdmin provisions the admin account directly in the store; registration
// over HTTP never grants the admin role.
func (e *testEnv) seedAdmin(t *testing.T) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("adminpass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, e.userRepo.Create(context.Background(), &models.User{
		ID:       "admin-1",
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: string(hash),
		Role:     models.RoleAdmin,
	}))
}

func (e *testEnv) seedProduct(t *testing.T, id, name, price string, stock int) {
	t.Helper()
	require.NoError(t, e.productRepo.Create(context.Background(), &models.Product{
		ID:          id,
		Name:        name,
		Description: "a test wallet",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
	}))
}

// doJSON issues one request against the app and returns the response.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// registerAndLogin creates a customer account over HTTP and returns its token.
func (e *testEnv) registerAndLogin(t *testing.T, name, email, password string) string {
	t.Helper()

	resp := e.doJSON(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	return e.login(t, email, password)
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	resp := e.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	require.NotEmpty(t, body["access_token"])
	return body["access_token"]
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupTestApp(t)

	// Registration
	resp := env.doJSON(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Test User", "email": "test@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	registerResp := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "User registered successfully", registerResp["message"])

	// Duplicate registration conflicts on the email
	resp = env.doJSON(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Test User", "email": "test@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Login returns a bearer token carrying the customer role
	token := env.login(t, "test@example.com", "password123")
	claims, err := env.authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "test@example.com", claims["email"])
	assert.Equal(t, models.RoleUser, claims["role"])
	assert.Contains(t, claims, "user_id")

	// Wrong password is rejected
	resp = env.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "test@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestProductEndpoints(t *testing.T) {
	env := setupTestApp(t)
	env.seedProduct(t, "wallet-classic", "Classic Bifold", "49.99", 25)
	env.seedProduct(t, "wallet-slim", "Slim Cardholder", "29.99", 40)

	customerToken := env.registerAndLogin(t, "Shopper", "shopper@example.com", "password123")
	adminToken := env.login(t, "admin@example.com", "adminpass")

	// Any authenticated caller can browse the catalog
	resp := env.doJSON(t, http.MethodGet, "/api/v1/products", customerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	products := decodeBody[[]models.Product](t, resp)
	assert.GreaterOrEqual(t, len(products), 2)

	resp = env.doJSON(t, http.MethodGet, "/api/v1/products/wallet-classic", customerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decodeBody[models.Product](t, resp)
	assert.Equal(t, "Classic Bifold", fetched.Name)

	// Catalog mutations are admin-gated
	newProduct := map[string]any{
		"id": "wallet-travel", "name": "Travel Organizer", "price": "79.99", "stock": 10,
	}
	resp = env.doJSON(t, http.MethodPost, "/api/v1/products", customerToken, newProduct)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.doJSON(t, http.MethodPost, "/api/v1/products", adminToken, newProduct)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[models.Product](t, resp)
	assert.Equal(t, "Travel Organizer", created.Name)

	resp = env.doJSON(t, http.MethodPut, "/api/v1/products/wallet-travel", adminToken, map[string]any{
		"name": "Travel Organizer XL", "price": "89.99", "stock": 8,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[models.Product](t, resp)
	assert.Equal(t, "Travel Organizer XL", updated.Name)

	resp = env.doJSON(t, http.MethodDelete, "/api/v1/products/wallet-travel", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.doJSON(t, http.MethodGet, "/api/v1/products/wallet-travel", customerToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestOrderCheckoutFlow(t *testing.T) {
	env := setupTestApp(t)
	env.seedProduct(t, "wallet-classic", "Classic Bifold", "49.99", 5)

	customerToken := env.registerAndLogin(t, "Shopper", "shopper@example.com", "password123")
	adminToken := env.login(t, "admin@example.com", "adminpass")

	// Empty checkout is rejected
	resp := env.doJSON(t, http.MethodPost, "/api/v1/orders", customerToken, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Checkout with explicit lines and a customization
	placeReq := map[string]any{
		"idempotency_key": "checkout-1",
		"lines": []map[string]any{
			{"product_id": "wallet-classic", "quantity": 2, "customization": map[string]string{
				"name_on_wallet": "ALICE", "color": "brown",
			}},
		},
	}
	resp = env.doJSON(t, http.MethodPost, "/api/v1/orders", customerToken, placeReq)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decodeBody[models.Order](t, resp)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("99.98")))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "ALICE", order.Items[0].Customization.NameOnWallet)

	// Stock decremented once
	resp = env.doJSON(t, http.MethodGet, "/api/v1/products/wallet-classic", customerToken, nil)
	product := decodeBody[models.Product](t, resp)
	assert.Equal(t, 3, product.Stock)

	// Retry with the same key returns the same order without re-reserving
	resp = env.doJSON(t, http.MethodPost, "/api/v1/orders", customerToken, placeReq)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	replay := decodeBody[models.Order](t, resp)
	assert.Equal(t, order.ID, replay.ID)

	resp = env.doJSON(t, http.MethodGet, "/api/v1/products/wallet-classic", customerToken, nil)
	product = decodeBody[models.Product](t, resp)
	assert.Equal(t, 3, product.Stock)

	// Over-ordering conflicts and leaves stock alone
	resp = env.doJSON(t, http.MethodPost, "/api/v1/orders", customerToken, map[string]any{
		"lines": []map[string]any{{"product_id": "wallet-classic", "quantity": 10}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	conflictBody := decodeBody[map[string]any](t, resp)
	assert.Equal(t, string(models.CodeInsufficientStock), conflictBody["code"])

	// Stale product reference
	resp = env.doJSON(t, http.MethodPost, "/api/v1/orders", customerToken, map[string]any{
		"lines": []map[string]any{{"product_id": "wallet-ghost", "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Customers may not mark their order paid
	resp = env.doJSON(t, http.MethodPut, "/api/v1/orders/"+order.ID, customerToken, map[string]string{
		"status": "paid",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// pending -> delivered skips payment, rejected even for admins
	resp = env.doJSON(t, http.MethodPut, "/api/v1/orders/"+order.ID, adminToken, map[string]string{
		"status": "delivered",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// The customer cancels their own pending order and stock returns
	resp = env.doJSON(t, http.MethodPut, "/api/v1/orders/"+order.ID, customerToken, map[string]string{
		"status": "cancelled",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	cancelled := decodeBody[models.Order](t, resp)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	resp = env.doJSON(t, http.MethodGet, "/api/v1/products/wallet-classic", customerToken, nil)
	product = decodeBody[models.Product](t, resp)
	assert.Equal(t, 5, product.Stock)
}

func TestOrderVisibility(t *testing.T) {
	env := setupTestApp(t)
	env.seedProduct(t, "wallet-classic", "Classic Bifold", "49.99", 5)

	aliceToken := env.registerAndLogin(t, "Alice", "alice@example.com", "password123")
	bobToken := env.registerAndLogin(t, "Bob", "bob@example.com", "password123")
	adminToken := env.login(t, "admin@example.com", "adminpass")

	resp := env.doJSON(t, http.MethodPost, "/api/v1/orders", aliceToken, map[string]any{
		"lines": []map[string]any{{"product_id": "wallet-classic", "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decodeBody[models.Order](t, resp)

	// The owner and the admin see the order
	resp = env.doJSON(t, http.MethodGet, "/api/v1/orders/"+order.ID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = env.doJSON(t, http.MethodGet, "/api/v1/orders/"+order.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Another customer gets a 404, not a 403, to hide its existence
	resp = env.doJSON(t, http.MethodGet, "/api/v1/orders/"+order.ID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Listing scopes to the caller
	resp = env.doJSON(t, http.MethodGet, "/api/v1/orders", bobToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	bobOrders := decodeBody[[]models.Order](t, resp)
	assert.Empty(t, bobOrders)

	resp = env.doJSON(t, http.MethodGet, "/api/v1/orders", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	allOrders := decodeBody[[]models.Order](t, resp)
	assert.Len(t, allOrders, 1)
}

func TestCartCheckout(t *testing.T) {
	env := setupTestApp(t)
	env.seedProduct(t, "wallet-classic", "Classic Bifold", "49.99", 5)

	token := env.registerAndLogin(t, "Shopper", "shopper@example.com", "password123")

	// Stage a cart item, then check out with no explicit lines
	resp := env.doJSON(t, http.MethodPost, "/api/v1/cart", token, map[string]any{
		"product_id": "wallet-classic",
		"quantity":   2,
		"customization": map[string]string{
			"name_on_wallet": "SHOPPER",
		},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.doJSON(t, http.MethodPost, "/api/v1/orders", token, map[string]any{
		"idempotency_key": "cart-checkout-1",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decodeBody[models.Order](t, resp)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "SHOPPER", order.Items[0].Customization.NameOnWallet)

	// The staged cart is cleared by a successful checkout
	resp = env.doJSON(t, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	items := decodeBody[[]models.CartItem](t, resp)
	assert.Empty(t, items)
}

func TestEndpointsWithoutAuth(t *testing.T) {
	env := setupTestApp(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/products"},
		{http.MethodPost, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/cart"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
		resp.Body.Close()
	}

	// Garbage token is also rejected
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
