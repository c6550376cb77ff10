package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KevinKickass/OpenLaundryCore/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cheapHasher() *PasswordHasher {
	return NewPasswordHasherWithParams(1024, 1, 1)
}

func newTestService(t *testing.T) *AuthService {
	t.Helper()
	hasher := cheapHasher()

	hash := func(pw string) string {
		h, err := hasher.HashPassword(pw)
		require.NoError(t, err)
		return h
	}

	t.Setenv("OLC_AUTH_TEST_SECRET", "0123456789abcdef0123456789abcdef")
	return NewAuthService(config.AuthConfig{
		JWTSecretEnv:   "OLC_AUTH_TEST_SECRET",
		AccessTokenTTL: time.Minute,
		Operators: []config.OperatorConfig{
			{Username: "olga", PasswordHash: hash("rinse"), Role: "operator"},
			{Username: "vic", PasswordHash: hash("look"), Role: "viewer"},
		},
	}, nil)
}

func TestPasswordHasher(t *testing.T) {
	hasher := cheapHasher()

	encoded, err := hasher.HashPassword("s3cret")
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$v=19$m=1024,t=1,p=1$")

	ok, err := hasher.VerifyPassword("s3cret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.VerifyPassword("wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)

	// A hasher with different costs still verifies using the encoded costs.
	ok, err = NewPasswordHasher().VerifyPassword("s3cret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = hasher.VerifyPassword("s3cret", "$bcrypt$nope")
	assert.Error(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	h := NewJWTHandler("0123456789abcdef0123456789abcdef", time.Minute)

	token, expiresAt, err := h.GenerateAccessToken("olga", "operator")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	claims, err := h.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "olga", claims.Username)
	assert.Equal(t, "operator", claims.Role)

	other := NewJWTHandler("another-secret-another-secret-xx", time.Minute)
	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)

	h.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = h.ValidateAccessToken(token)
	assert.Error(t, err, "expired token must be rejected")
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)

	token, _, err := svc.Login("olga", "rinse", "127.0.0.1")
	require.NoError(t, err)

	claims, perms, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "olga", claims.Username)
	assert.Equal(t, []Permission{PermViewer, PermOperator}, perms)

	_, _, err = svc.Login("olga", "spin", "127.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login("mallory", "rinse", "127.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRoleToPermissions(t *testing.T) {
	assert.Equal(t, []Permission{PermViewer, PermOperator, PermAdmin}, RoleToPermissions("admin"))
	assert.Equal(t, []Permission{PermViewer}, RoleToPermissions("viewer"))
	assert.Equal(t, []Permission{PermViewer}, RoleToPermissions(""))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService(t)

	router := gin.New()
	router.POST("/wash", svc.AuthMiddleware(), RequirePermission(PermOperator), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUsername))
	})

	operatorToken, _, err := svc.Login("olga", "rinse", "")
	require.NoError(t, err)
	viewerToken, _, err := svc.Login("vic", "look", "")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"bad scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"viewer", "Bearer " + viewerToken, http.StatusForbidden},
		{"operator", "Bearer " + operatorToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/wash", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
