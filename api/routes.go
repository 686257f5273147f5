/*
 * @module api/routes
 * @description API路由配置模块,负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范,统一错误处理和响应格式;对账路由需API密钥鉴权
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers, api/middleware
 */

package api

import (
	"recon-service/api/controllers"
	apimiddleware "recon-service/api/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 对账管理
	r.Route("/recon", func(r chi.Router) {
		r.Use(apimiddleware.APIKeyAuth)

		reconController := controllers.NewReconController()
		r.Post("/trigger", reconController.Trigger)
		r.Get("/runs", reconController.GetRuns)
		r.Get("/runs/{id}", reconController.GetRun)
		r.Get("/runs/{id}/report.tsv", reconController.GetRunReport)
	})
}
