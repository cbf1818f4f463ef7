package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ElRublo/gestion-envios/internal/app"
	"github.com/ElRublo/gestion-envios/internal/config"
	"github.com/ElRublo/gestion-envios/internal/handler"
	"github.com/ElRublo/gestion-envios/internal/jobs"
	"github.com/ElRublo/gestion-envios/internal/postgres"
	"github.com/ElRublo/gestion-envios/internal/repo"
	"github.com/ElRublo/gestion-envios/internal/service"
	"github.com/ElRublo/gestion-envios/internal/webhook"
	"github.com/ElRublo/gestion-envios/pkg/cache"
	"github.com/ElRublo/gestion-envios/pkg/trm"

	"github.com/joho/godotenv"
)

// @title           API de Gestión de Envíos del Mall
// @version         1.0
// @description     Seguimiento de órdenes de envío para el mall
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	orderRepo := repo.NewPostgresRepo(db)
	txManager := trm.NewManager(db)
	orderCache := cache.NewLRUCache(conf.Cache.Capacity, conf.Cache.TTL)
	notifier := webhook.NewNotifier(logger, conf.Webhook.Timeout)

	orderService := service.NewOrderService(logger, txManager, orderRepo, orderCache, notifier)

	kafkaHandler := handler.NewKafkaHandler(logger, conf.Kafka, orderService)
	httpHandler := handler.NewHTTPHandler(logger, orderService)
	closureJob := jobs.NewClosureReportJob(orderService, logger)

	app := app.New(logger, conf)

	app.SetHTTPHandlers(httpHandler)
	app.SetConsumers(kafkaHandler)
	app.SetJobs(closureJob)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	orderCache.StartJanitor(ctx)

	panicIfErr("failed to start app", app.Start(ctx))
	<-ctx.Done()
	panicIfErr("failed to stop app", app.Stop())
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
