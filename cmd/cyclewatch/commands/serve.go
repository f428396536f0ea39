package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwpark/cyclewatch/internal/api"
	"github.com/jwpark/cyclewatch/internal/api/handlers"
	"github.com/jwpark/cyclewatch/internal/scheduler"
	"github.com/jwpark/cyclewatch/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 분석 런 트리거/조회 엔드포인트 제공
- 런 결과 WebSocket 스트림 제공
- (옵션) 정기 분석 런 스케줄러 시작

Endpoints:
  GET  /health                  - Health check
  POST /api/runs                - 분석 런 실행
  GET  /api/runs/latest         - 최근 런 조회
  GET  /api/runs/{id}           - 런 조회
  GET  /api/runs/{id}/actions   - 런 액션 조회
  GET  /api/analysis/{ticker}   - 단일 종목 분석
  GET  /api/positions           - 포지션 조회
  PUT  /api/positions           - 포지션 교체
  GET  /api/ws                  - 런 결과 스트림

Example:
  go run ./cmd/cyclewatch serve
  go run ./cmd/cyclewatch serve --port 8090 --with-scheduler`,
	RunE: runServe,
}

var (
	servePort     string
	withScheduler bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (기본: PORT env)")
	serveCmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "정기 분석 런 스케줄러 함께 시작")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== CycleWatch API Server ===")

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	// Override port if flag is set
	if servePort != "" {
		d.cfg.Port = servePort
	}

	// WebSocket hub for run result streaming
	hub := handlers.NewHub(d.log)

	runHandler := handlers.NewRunHandler(d.orchestrator, d.runs, d.positions, hub, d.policyHash, d.log)
	positionHandler := handlers.NewPositionHandler(d.positions, d.log)

	router := api.NewRouter(runHandler, positionHandler, hub, d.log)
	server := api.New(d.cfg, d.log, router)

	// Optional scheduler for daily post-close runs
	var sched *scheduler.Scheduler
	if withScheduler || d.cfg.Scheduler.Enabled {
		sched = scheduler.New(d.log)
		job := jobs.NewAnalysisRunJob(
			d.orchestrator, d.positions, hub,
			d.policyHash, d.cfg.Scheduler.CronSpec, d.log,
		)
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("schedule analysis job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	go func() {
		if err := server.Start(); err != nil {
			d.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", d.cfg.Port)
	if sched != nil {
		fmt.Printf("⏰ Scheduled runs: %s\n", d.cfg.Scheduler.CronSpec)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	d.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	d.log.Info("Server stopped")
	return nil
}
