package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"user_manager/internal/limiter"
	"user_manager/internal/middleware"
	"user_manager/internal/service"
	"user_manager/internal/test"
	"user_manager/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	testCookieName    = "access_token"
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "admin123"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	repo   *test.MemoryUserRepository
}

// newTestServer wires the full route tree against an in-memory repository,
// with a seeded admin account and a short throttle cooldown.
func newTestServer(t *testing.T, blockTime time.Duration) *testServer {
	t.Helper()

	repo := test.NewMemoryUserRepository()
	jwtUtil := utils.NewJWTUtil("test-secret", time.Hour)
	loginLimiter := limiter.NewMemory(limiter.DefaultMaxAttempts, blockTime)

	authService := service.NewAuthService(repo, jwtUtil, loginLimiter)
	userService := service.NewUserService(repo)
	require.NoError(t, authService.EnsureAdmin(context.Background(), "Admin", testAdminEmail, "+595000", testAdminPassword))

	authHandler := NewAuthHandler(authService, CookieSettings{
		Name:   testCookieName,
		MaxAge: 3600,
		Secure: false,
	})
	userHandler := NewUserHandler(userService)

	router := gin.New()
	authMW := middleware.RequireAuth(jwtUtil, testCookieName)
	rootGroup := router.Group("")
	authHandler.RegisterAuthRoutes(rootGroup, authMW)
	userHandler.RegisterUserRoutes(rootGroup, authMW, middleware.AdminOnly(), middleware.SelfOrAdmin())

	return &testServer{router: router, repo: repo}
}

// do performs a JSON request, optionally carrying the session cookie
func (s *testServer) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// login authenticates and returns the session cookie set by the server
func (s *testServer) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()

	w := s.do(t, http.MethodPost, "/auth/login", gin.H{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == testCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set on login")
	return nil
}

// register creates a user via the public endpoint and returns its id
func (s *testServer) register(t *testing.T, name, email, password string) string {
	t.Helper()

	w := s.do(t, http.MethodPost, "/auth/register", gin.H{
		"name": name, "email": email, "phone": "+595111222", "password": password,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, "register failed: %s", w.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	return created.ID
}
