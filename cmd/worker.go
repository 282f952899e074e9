package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fintrack/fintrack/internal/savings"
	savingsRepo "github.com/fintrack/fintrack/internal/savings/postgres"
	"github.com/fintrack/fintrack/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers, such as the savings status sweep.`,
}

var sweepWorkerCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Start the savings status sweep",
	Long:  `Periodically re-derives every savings goal's status so goals drift to atRisk with the passage of time, not only on mutation.`,
	Run: func(cmd *cobra.Command, args []string) {
		startSweepWorker()
	},
}

var (
	sweepInterval  time.Duration
	sweepBatchSize int
)

func startSweepWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	interval := config.Sweep.Interval
	if sweepInterval > 0 {
		interval = sweepInterval
	}
	batchSize := config.Sweep.BatchSize
	if sweepBatchSize > 0 {
		batchSize = sweepBatchSize
	}

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open gorm over db connection: %v\n", err)
		os.Exit(1)
	}

	service := savings.NewService(savingsRepo.NewSavingsRepository(gormDB), nil, lg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lg.Info("savings status sweep started", "interval", interval, "batch_size", batchSize)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runSweep(ctx, service, batchSize)
	for {
		select {
		case <-ctx.Done():
			lg.Info("savings status sweep stopped")
			return
		case <-ticker.C:
			runSweep(ctx, service, batchSize)
		}
	}
}

func runSweep(ctx context.Context, service *savings.Service, batchSize int) {
	lg := logger.LoggerWrapper()

	changed, err := service.SweepStatuses(ctx, batchSize)
	if err != nil {
		lg.Error("savings status sweep failed", "error", err)
		return
	}
	lg.Info("savings status sweep completed", "statuses_changed", changed)
}

func init() {
	sweepWorkerCmd.Flags().DurationVar(&sweepInterval, "interval", 0, "Sweep interval (overrides config)")
	sweepWorkerCmd.Flags().IntVar(&sweepBatchSize, "batch-size", 0, "Goals per batch (overrides config)")

	workerCmd.AddCommand(sweepWorkerCmd)
	rootCmd.AddCommand(workerCmd)
}
