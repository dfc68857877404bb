package main

import (
	"catalog_importer/config"
	"catalog_importer/internal/app"
	"catalog_importer/internal/core/services"
	"catalog_importer/metrics"
	"catalog_importer/pkg/logger"
	"catalog_importer/pkg/middleware"
	"context"
	"errors"
	"fmt"
	"github.com/robfig/cron"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"
)

const (
	cmdRun      = "run"
	cmdRunAll   = "run-all"
	cmdMigrate  = "migrate"
	cmdSchedule = "schedule"
)

type command struct {
	name     string
	supplier string
}

// parseCommand разбирает аргументы. "run <code>" и просто "<code>" запускают одного поставщика.
func parseCommand(args []string, codes []string) (command, bool) {
	if len(args) == 0 {
		return command{}, false
	}
	known := func(code string) bool {
		for _, c := range codes {
			if c == code {
				return true
			}
		}
		return false
	}
	switch args[0] {
	case cmdRun:
		if len(args) != 2 || !known(args[1]) {
			return command{}, false
		}
		return command{name: cmdRun, supplier: args[1]}, true
	case cmdRunAll, cmdMigrate, cmdSchedule:
		if len(args) != 1 {
			return command{}, false
		}
		return command{name: args[0]}, true
	}
	if len(args) == 1 && known(args[0]) {
		return command{name: cmdRun, supplier: args[0]}, true
	}
	return command{}, false
}

func printUsage(w io.Writer, codes []string) {
	fmt.Fprintf(w, "Использование:\n")
	fmt.Fprintf(w, "  importer run <поставщик>   импорт одного поставщика\n")
	fmt.Fprintf(w, "  importer run-all           импорт всех поставщиков по очереди\n")
	fmt.Fprintf(w, "  importer migrate           применить миграции\n")
	fmt.Fprintf(w, "  importer schedule          импорт всех поставщиков по расписанию\n")
	fmt.Fprintf(w, "Поставщики: %s\n", strings.Join(codes, ", "))
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	codes := app.SupplierCodes()
	cmd, ok := parseCommand(args, codes)
	if !ok {
		printUsage(out, codes)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	log := logger.NewLoggerWithMode(out, "[importer]", cfg.LogMode)
	defer log.Sync()

	importerApp := app.NewImporterApp(app.NewConnector(cfg.Storage, log), cfg, log)
	if err := importerApp.Open(); err != nil {
		log.Error("%v", err)
		return 1
	}
	defer importerApp.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd.name {
	case cmdMigrate:
		return 0
	case cmdRun:
		batchID := services.NewBatchID(time.Now())
		count, err := importerApp.Runner().RunOne(ctx, cmd.supplier, batchID)
		importerApp.PushMetrics(context.Background())
		if err != nil {
			log.Error("%s: %v", cmd.supplier, err)
			return 1
		}
		log.Log("%s: импортировано %d записей, batch %s", cmd.supplier, count, batchID)
		return 0
	case cmdRunAll:
		err := importerApp.Runner().RunAll(ctx)
		importerApp.PushMetrics(context.Background())
		if err != nil {
			log.Error("run-all: %v", err)
			return 1
		}
		return 0
	case cmdSchedule:
		if err := schedule(ctx, importerApp, cfg, log); err != nil {
			log.Error("schedule: %v", err)
			return 1
		}
		return 0
	}
	return 0
}

// skipIfRunning пропускает запуск job, пока предыдущий еще не завершился.
func skipIfRunning(log logger.Logger, job func()) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			log.Log("Previous scheduled run-all is still running, skipping")
			return
		}
		defer running.Store(false)
		job()
	}
}

// schedule запускает run-all по cron-выражению до получения сигнала остановки.
func schedule(ctx context.Context, importerApp *app.ImporterApp, cfg *config.AppConfig, log logger.Logger) error {
	c := cron.New()
	err := c.AddFunc(cfg.Schedule, skipIfRunning(log, func() {
		if err := importerApp.Runner().RunAll(ctx); err != nil {
			log.Error("scheduled run-all: %v", err)
		}
		importerApp.PushMetrics(context.Background())
	}))
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}

	var srv *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", middleware.Instrument(metrics.MetricsHandler(), log, 2*time.Second))
		srv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server: %v", err)
			}
		}()
		log.Log("Metrics served on %s/metrics", cfg.Metrics.Addr)
	}

	c.Start()
	log.Log("Scheduler started: %s", cfg.Schedule)
	<-ctx.Done()
	c.Stop()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown: %w", err)
		}
	}
	log.Log("Scheduler stopped")
	return nil
}
