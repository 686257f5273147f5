/*
 * @module service/scheduler/recon_scheduler
 * @description 对账调度器,服务模式下按cron表达式周期性触发全量对账
 * @architecture 分层架构 - 调度层
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow cron触发 -> 在途检查 -> 运行锁获取 -> 全量对账运行
 * @rules 同一时刻最多一次在途运行,触发时若有运行在途则跳过本次;
 *        配置Redis时跨实例持有运行锁,多副本部署只有一个实例真正执行
 * @dependencies github.com/robfig/cron/v3, recon-service/service/reconrun, recon-service/service/lock
 * @refs main.go, service/init.go
 */

package scheduler

import (
	"context"
	"log"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"recon-service/service/lock"
	"recon-service/service/models"
	"recon-service/service/reconrun"
)

// DefaultCronSpec 默认每天凌晨两点执行(带秒字段)
const DefaultCronSpec = "0 0 2 * * *"

// 运行锁键与持有时长,全量对账耗时按小时计
const (
	runLockKey = "scheduled_recon"
	runLockTTL = 4 * time.Hour
)

// ReconScheduler 对账调度器
type ReconScheduler struct {
	cron       *cron.Cron
	runService *reconrun.Service
	runLock    lock.RunLock // 可为nil,未配置Redis时仅做单实例在途防重
	spec       string
	inFlight   atomic.Bool
}

// NewReconScheduler 创建对账调度器
func NewReconScheduler(runService *reconrun.Service, runLock lock.RunLock, spec string) *ReconScheduler {
	if spec == "" {
		spec = DefaultCronSpec
	}
	return &ReconScheduler{
		cron:       cron.New(cron.WithSeconds()),
		runService: runService,
		runLock:    runLock,
		spec:       spec,
	}
}

// Start 启动调度器
func (s *ReconScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runScheduled); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("对账调度器启动完成, cron表达式: %s", s.spec)
	return nil
}

// Stop 停止调度器
func (s *ReconScheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Println("对账调度器已停止")
}

// runScheduled 执行一次定时全量对账
func (s *ReconScheduler) runScheduled() {
	if !s.inFlight.CompareAndSwap(false, true) {
		slog.Warn("已有对账运行在途,跳过本次定时触发")
		return
	}
	defer s.inFlight.Store(false)

	ctx := context.Background()
	runOnce := func() error {
		_, _, err := s.runService.Run(ctx, nil, models.TriggerCron)
		return err
	}

	var err error
	if s.runLock != nil {
		err = lock.WithLock(ctx, s.runLock, runLockKey, runLockTTL, runOnce)
	} else {
		err = runOnce()
	}
	if err != nil {
		slog.Error("定时对账运行失败", "error", err)
	}
}
