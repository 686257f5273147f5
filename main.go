package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"recon-service/api"
	"recon-service/logger"
	"recon-service/service"
	"recon-service/service/models"
	"recon-service/service/report"
	"recon-service/service/scheduler"

	daprd "github.com/dapr/go-sdk/service/http"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PORT         = 80
	BASE_CONTEXT = ""
)

func init() {
	if val := os.Getenv("LISTEN_PORT"); val != "" {
		PORT, _ = strconv.Atoi(val)
	}

	if val := os.Getenv("BASE_CONTEXT"); val != "" {
		BASE_CONTEXT = val
	}
}

// 数据集对账服务
// CLI模式(默认): 无参数对参考清单全部项目对账,单个位置参数只对该项目对账,
// 输出 detect_missing_datasets.tsv 与 missing_submitter_ids.json
// 服务模式: SERVICE_MODE=true 时启动HTTP服务,提供触发/查询接口与定时对账
func main() {
	logger.InitLogger()

	if os.Getenv("SERVICE_MODE") == "true" {
		runServer()
		return
	}
	runCLI()
}

// runCLI 执行一次对账并写出报告文件
func runCLI() {
	var projectIDs []string
	if len(os.Args) > 1 {
		// 测试模式:只对指定项目运行
		projectIDs = []string{os.Args[1]}
	}

	_, results, err := service.GlobalRunService.Run(context.Background(), projectIDs, models.TriggerCLI)
	if err != nil {
		log.Fatalf("对账运行失败: %v", err)
	}

	encoding := os.Getenv("RECON_TSV_ENCODING")
	rows := report.RowsFromResults(results)
	if err := report.WriteTSV("detect_missing_datasets.tsv", rows, encoding); err != nil {
		log.Fatalf("写出TSV报告失败: %v", err)
	}
	if err := report.WriteIDLog("missing_submitter_ids.json", results); err != nil {
		log.Fatalf("写出样本ID日志失败: %v", err)
	}

	fmt.Println("对账报告已保存: detect_missing_datasets.tsv")
	fmt.Println("样本ID日志已保存: missing_submitter_ids.json")
}

// runServer 启动HTTP服务与定时对账
func runServer() {
	reconScheduler := scheduler.NewReconScheduler(service.GlobalRunService, service.GlobalRunLock, os.Getenv("RECON_CRON"))
	if err := reconScheduler.Start(); err != nil {
		log.Fatalf("对账调度器启动失败: %v", err)
	}
	defer reconScheduler.Stop()

	mux := chi.NewRouter()

	// 如果有BASE_CONTEXT,则在该路径下挂载所有路由
	if BASE_CONTEXT != "" {
		mux.Route(BASE_CONTEXT, func(r chi.Router) {
			subMux := r.(*chi.Mux)
			api.InitRoute(subMux)
			r.Handle("/metrics", promhttp.Handler())
		})
	} else {
		api.InitRoute(mux)
		mux.Handle("/metrics", promhttp.Handler())
	}

	s := daprd.NewServiceWithMux(":"+strconv.Itoa(PORT), mux)
	if err := s.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("error: %v", err)
	}
}
