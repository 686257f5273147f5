/*
 * @module api/controllers/recon_controller
 * @description 对账控制器,提供触发对账运行、查询运行历史与下载TSV报告的接口
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow HTTP请求 -> 运行服务调用 -> 统一响应
 * @rules 触发接口异步执行,立即返回运行ID;报告下载从落库结果重建TSV
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/reconrun/service.go, service/report/tsv_writer.go
 */

package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"recon-service/service"
	"recon-service/service/models"
	"recon-service/service/report"
)

// ReconController 对账控制器
type ReconController struct{}

// NewReconController 创建对账控制器实例
func NewReconController() *ReconController {
	return &ReconController{}
}

// TriggerRequest 触发对账请求
type TriggerRequest struct {
	ProjectIDs []string `json:"project_ids"` // 为空时对全部项目运行
}

// Trigger 触发一次对账运行
// @Summary 触发对账
// @Description 异步触发一次对账运行,立即返回
// @Tags 对账
// @Accept json
// @Produce json
// @Success 202 {object} APIResponse
// @Router /recon/trigger [post]
func (c *ReconController) Trigger(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	if r.ContentLength > 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, APIResponse{Status: http.StatusBadRequest, Msg: "请求体解析失败: " + err.Error()})
			return
		}
	}

	go func() {
		if _, _, err := service.GlobalRunService.Run(context.Background(), req.ProjectIDs, models.TriggerAPI); err != nil {
			slog.Error("API触发的对账运行失败", "error", err)
		}
	}()

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, APIResponse{Status: 0, Msg: "对账运行已触发"})
}

// GetRuns 查询对账运行列表
// @Summary 运行列表
// @Description 查询最近的对账运行记录
// @Tags 对账
// @Produce json
// @Success 200 {object} APIResponse
// @Router /recon/runs [get]
func (c *ReconController) GetRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := service.GlobalRunService.GetRuns(50)
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, APIResponse{Status: http.StatusInternalServerError, Msg: err.Error()})
		return
	}
	render.JSON(w, r, APIResponse{Status: 0, Msg: "查询成功", Data: runs})
}

// GetRun 查询单次运行详情
// @Summary 运行详情
// @Description 查询单次对账运行及其全部项目报告
// @Tags 对账
// @Produce json
// @Success 200 {object} APIResponse
// @Router /recon/runs/{id} [get]
func (c *ReconController) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := service.GlobalRunService.GetRun(id)
	if err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, APIResponse{Status: http.StatusNotFound, Msg: err.Error()})
		return
	}
	render.JSON(w, r, APIResponse{Status: 0, Msg: "查询成功", Data: run})
}

// GetRunReport 下载单次运行的TSV报告
// @Summary 下载TSV报告
// @Description 按落库的项目报告重建detect_missing_datasets.tsv
// @Tags 对账
// @Produce text/tab-separated-values
// @Success 200 {string} string
// @Router /recon/runs/{id}/report.tsv [get]
func (c *ReconController) GetRunReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := service.GlobalRunService.GetRun(id)
	if err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, APIResponse{Status: http.StatusNotFound, Msg: err.Error()})
		return
	}

	rows := make([]report.Row, 0, len(run.Reports))
	for _, p := range run.Reports {
		if p.Error != "" {
			continue
		}
		rows = append(rows, report.Row{
			ProjectID:          p.ProjectID,
			MissingDatasets:    []string(p.MissingDatasets),
			WrongCountDatasets: []string(p.WrongCountDatasets),
			MissingDatatypes:   []string(p.MissingDatatypes),
		})
	}

	data, err := report.RenderTSV(rows, r.URL.Query().Get("encoding"))
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, APIResponse{Status: http.StatusInternalServerError, Msg: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/tab-separated-values")
	w.Header().Set("Content-Disposition", "attachment; filename=detect_missing_datasets.tsv")
	w.Write(data)
}
