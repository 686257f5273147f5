/*
 * @module api/middleware/apikey_auth
 * @description API密钥鉴权中间件,校验Bearer密钥与环境变量中的bcrypt哈希是否匹配
 * @architecture 中间件模式 - HTTP请求拦截和验证
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 密钥提取 -> bcrypt比对 -> 放行或401
 * @rules 未配置RECON_API_KEY_HASH时鉴权关闭,全部放行;密钥错误统一返回401
 * @dependencies net/http, golang.org/x/crypto/bcrypt
 * @refs api/routes.go
 */

package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/render"
	"golang.org/x/crypto/bcrypt"
)

// apiKeyResponse 鉴权失败响应
type apiKeyResponse struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
}

// APIKeyAuth API密钥鉴权中间件
// 从Authorization头提取Bearer密钥,与RECON_API_KEY_HASH中的bcrypt哈希比对
func APIKeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keyHash := os.Getenv("RECON_API_KEY_HASH")
		if keyHash == "" {
			// 未配置密钥哈希,鉴权关闭
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		key := strings.TrimPrefix(authHeader, "Bearer ")
		if key == "" || key == authHeader {
			unauthorized(w, r, "缺少API密钥")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
			unauthorized(w, r, "API密钥错误")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, apiKeyResponse{Status: http.StatusUnauthorized, Msg: msg})
}
