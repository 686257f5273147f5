/*
 * @module service/metrics/metrics
 * @description Prometheus指标定义,统计对账运行次数、项目数与各类分歧数量
 * @architecture 工具层 - 指标采集
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 包加载时注册指标 -> 引擎运行中递增 -> /metrics端点暴露
 * @rules 指标只注册一次,使用默认Registry,由main挂载promhttp
 * @dependencies github.com/prometheus/client_golang
 * @refs main.go, service/recon/engine.go
 */

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal 对账运行总数,按最终状态分类
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recon_runs_total",
		Help: "对账运行总数",
	}, []string{"status"})

	// ProjectsReconciled 完成对账的项目数
	ProjectsReconciled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recon_projects_reconciled_total",
		Help: "完成对账的项目总数",
	})

	// ProjectsFailed 对账中止的项目数
	ProjectsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recon_projects_failed_total",
		Help: "因清单调用失败而中止对账的项目总数",
	})

	// MissingDatasets 目标侧缺失的数据集数
	MissingDatasets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recon_missing_datasets_total",
		Help: "目标侧缺失的数据集总数",
	})

	// WrongCountDatasets 样本数不一致的数据集数
	WrongCountDatasets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recon_wrong_count_datasets_total",
		Help: "样本数不一致的数据集总数",
	})

	// CountAnomalies 目标侧样本数多于源侧的异常观察数
	CountAnomalies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recon_count_anomalies_total",
		Help: "目标侧样本数多于源侧的异常观察总数",
	})

	// InventoryErrors 清单调用错误数,按清单方向分类
	InventoryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recon_inventory_errors_total",
		Help: "参考/目标清单调用错误总数",
	}, []string{"inventory"})
)
