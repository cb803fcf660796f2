package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func setupAuthRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey)})
	})
	return r
}

func doAuthRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	valid, err := GenerateAccessToken("owner-1", time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	expired, err := GenerateAccessToken("owner-1", -time.Minute)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		UserID:           "owner-1",
		TokenType:        tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer},
	}).SignedString([]byte("another-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid_token", "Bearer " + valid, http.StatusOK},
		{"missing_header", "", http.StatusUnauthorized},
		{"wrong_scheme", "Token " + valid, http.StatusUnauthorized},
		{"expired_token", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong_signature", "Bearer " + foreign, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	r := setupAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doAuthRequest(r, tt.header)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			body := parseBody(t, rec)
			if tt.wantStatus == http.StatusOK {
				if body["user_id"] != "owner-1" {
					t.Errorf("expected owner-1 in context, got %v", body["user_id"])
				}
				return
			}
			errObj, ok := body["error"].(map[string]interface{})
			if !ok || errObj["code"] != "UNAUTHORIZED" {
				t.Errorf("expected UNAUTHORIZED error, got %v", body)
			}
		})
	}
}

func TestParseAccessToken_RejectsOtherTokenTypes(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		UserID:    "owner-1",
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(getJWTKey())
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := ParseAccessToken(token); err == nil {
		t.Error("expected refresh token to be rejected")
	}
}
