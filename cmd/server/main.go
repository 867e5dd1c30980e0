package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kalpa111334/qr-with-dutch/internal/adapters/http/handler"
	"github.com/Kalpa111334/qr-with-dutch/internal/adapters/repository/postgres"
	"github.com/Kalpa111334/qr-with-dutch/internal/core/attendance"
	"github.com/Kalpa111334/qr-with-dutch/internal/core/cooldown"
	"github.com/Kalpa111334/qr-with-dutch/internal/core/scan"
	"github.com/Kalpa111334/qr-with-dutch/internal/platform/config"
	pg "github.com/Kalpa111334/qr-with-dutch/internal/platform/db/postgres"
	"github.com/Kalpa111334/qr-with-dutch/internal/platform/server"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env は存在すれば読み込む。CONFIG_PATH などの上書き用。
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)
	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	rosterRepo := postgres.NewRosterRepository(dbPool)
	attendanceRepo := postgres.NewAttendanceRepository(dbPool)

	sequencer := attendance.NewService(employeeRepo, rosterRepo, attendanceRepo, nil, txManager, cfg.Attendance.DefaultStartTime)
	registry := cooldown.NewRegistry(nil, cfg.Attendance.FirstCooldown, cfg.Attendance.SecondCooldown)
	go registry.Run(ctx, 0)
	processor := scan.NewProcessor(sequencer, registry, scan.NewDebouncer(cfg.Attendance.DebounceWindow), nil)

	router := handler.NewRouter(
		handler.NewScanHandler(processor),
		handler.NewAttendanceHandler(sequencer),
		handler.NewCooldownHandler(registry),
	)
	httpServer := server.New(cfg.Server.ListenAddr, router)

	log.Printf("http server listening on %s", cfg.Server.ListenAddr)

	if err := httpServer.Run(ctx); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}
