package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyAuthDisabled(t *testing.T) {
	t.Setenv("RECON_API_KEY_HASH", "")

	req := httptest.NewRequest(http.MethodGet, "/recon/runs", nil)
	rec := httptest.NewRecorder()
	APIKeyAuth(okHandler()).ServeHTTP(rec, req)

	// 未配置哈希时鉴权关闭
	if rec.Code != http.StatusOK {
		t.Errorf("状态码 = %d, 期望 200", rec.Code)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("RECON_API_KEY_HASH", string(hash))

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
	}{
		{"正确密钥放行", "Bearer secret-key", http.StatusOK},
		{"错误密钥拒绝", "Bearer wrong-key", http.StatusUnauthorized},
		{"缺少Authorization头", "", http.StatusUnauthorized},
		{"非Bearer格式", "Basic secret-key", http.StatusUnauthorized},
		{"空Bearer密钥", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/recon/runs", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			APIKeyAuth(okHandler()).ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("状态码 = %d, 期望 %d", rec.Code, tt.wantCode)
			}
		})
	}
}
