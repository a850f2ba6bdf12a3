package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/http/response"
	"github.com/toko-next/internal/models"
	"github.com/toko-next/internal/repository"
	"github.com/toko-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const testJWTSecret = "middleware-test-secret"

func setupAuthMiddlewareTest(t *testing.T, name string) (*gorm.DB, repository.UserRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:middleware_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db, repository.NewUserRepository(db)
}

func createMiddlewareUser(t *testing.T, db *gorm.DB, username, role string, tokenVersion uint64) models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		PasswordHash: "x",
		Role:         role,
		Type:         constants.UserTypeRegular,
		Status:       constants.UserStatusActive,
		TokenVersion: tokenVersion,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func signAdminToken(t *testing.T, user models.User) string {
	t.Helper()
	claims := service.JWTClaims{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return token
}

func signUserToken(t *testing.T, user models.User, tokenVersion uint64) string {
	t.Helper()
	claims := service.UserJWTClaims{
		UserID:       user.ID,
		Username:     user.Username,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return token
}

func serveWithAuth(handler gin.HandlerFunc, authHeader string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handler)
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"admin_id": c.GetUint("admin_id"),
			"user_id":  c.GetUint("user_id"),
		})
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (int, map[string]interface{}) {
	t.Helper()
	var resp struct {
		StatusCode int                    `json:"status_code"`
		Data       map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode, resp.Data
}

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://toko.example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://toko.example.com", []string{"*"}, true)
	if got != "https://toko.example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://admin.toko.example.com", []string{"https://admin.toko.example.com", "https://shop.toko.example.com"}, false)
	if got != "https://admin.toko.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://evil.example.com", []string{"https://admin.toko.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if strings.TrimSpace(generated) == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

func TestJWTAuthMiddlewareMissingSecret(t *testing.T) {
	w := serveWithAuth(JWTAuthMiddleware("", nil), "")
	code, _ := decodeEnvelope(t, w)
	if code != 401 {
		t.Fatalf("status_code want 401 got %d", code)
	}
}

func TestJWTAuthMiddlewareBearerFormat(t *testing.T) {
	db, userRepo := setupAuthMiddlewareTest(t, "bearer")
	admin := createMiddlewareUser(t, db, "admin-bearer", constants.RoleAdmin, 0)
	token := signAdminToken(t, admin)

	// 缺少请求头
	w := serveWithAuth(JWTAuthMiddleware(testJWTSecret, userRepo), "")
	if code, _ := decodeEnvelope(t, w); code != 401 {
		t.Fatalf("missing header: status_code want 401 got %d", code)
	}

	// 非 Bearer 前缀
	w = serveWithAuth(JWTAuthMiddleware(testJWTSecret, userRepo), "Token "+token)
	if code, _ := decodeEnvelope(t, w); code != 401 {
		t.Fatalf("bad scheme: status_code want 401 got %d", code)
	}

	w = serveWithAuth(JWTAuthMiddleware(testJWTSecret, userRepo), "Bearer "+token)
	code, data := decodeEnvelope(t, w)
	if code != 0 {
		t.Fatalf("valid admin token: status_code want 0 got %d", code)
	}
	if got, _ := data["admin_id"].(float64); uint(got) != admin.ID {
		t.Fatalf("admin_id want %d got %v", admin.ID, data["admin_id"])
	}
}

func TestJWTAuthMiddlewareRejectsNonAdminRole(t *testing.T) {
	db, userRepo := setupAuthMiddlewareTest(t, "role")
	customer := createMiddlewareUser(t, db, "customer-role", constants.RoleUser, 0)
	token := signAdminToken(t, customer)

	w := serveWithAuth(JWTAuthMiddleware(testJWTSecret, userRepo), "Bearer "+token)
	if code, _ := decodeEnvelope(t, w); code != 401 {
		t.Fatalf("user-role token on admin middleware: status_code want 401 got %d", code)
	}
}

func TestUserJWTAuthMiddlewareTokenVersionRevocation(t *testing.T) {
	db, userRepo := setupAuthMiddlewareTest(t, "version")
	user := createMiddlewareUser(t, db, "customer-ver", constants.RoleUser, 3)

	// Token 版本匹配则放行并注入 user_id
	w := serveWithAuth(UserJWTAuthMiddleware(testJWTSecret, userRepo), "Bearer "+signUserToken(t, user, 3))
	code, data := decodeEnvelope(t, w)
	if code != 0 {
		t.Fatalf("matching token version: status_code want 0 got %d", code)
	}
	if got, _ := data["user_id"].(float64); uint(got) != user.ID {
		t.Fatalf("user_id want %d got %v", user.ID, data["user_id"])
	}

	// 版本不匹配（改密/全量登出后）拒绝
	w = serveWithAuth(UserJWTAuthMiddleware(testJWTSecret, userRepo), "Bearer "+signUserToken(t, user, 2))
	if code, _ := decodeEnvelope(t, w); code != 401 {
		t.Fatalf("stale token version: status_code want 401 got %d", code)
	}
}

func TestUserJWTAuthMiddlewareRejectsDisabledUser(t *testing.T) {
	db, userRepo := setupAuthMiddlewareTest(t, "disabled")
	user := createMiddlewareUser(t, db, "customer-off", constants.RoleUser, 0)
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}

	w := serveWithAuth(UserJWTAuthMiddleware(testJWTSecret, userRepo), "Bearer "+signUserToken(t, user, 0))
	if code, _ := decodeEnvelope(t, w); code != 401 {
		t.Fatalf("disabled user: status_code want 401 got %d", code)
	}
}
