package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"elite_crm_backend/internal/alerts"
	"elite_crm_backend/internal/analysis"
	"elite_crm_backend/internal/chat"
	"elite_crm_backend/internal/events"
	"elite_crm_backend/internal/leads/repository"
	"elite_crm_backend/internal/leads/scoring"
	leadsvc "elite_crm_backend/internal/leads/service"
	"elite_crm_backend/internal/queue"
	"elite_crm_backend/internal/whatsapp"
	"elite_crm_backend/migrations"
	"elite_crm_backend/platform/config"
	"elite_crm_backend/platform/db"
	"elite_crm_backend/platform/logger"
)

const adminAddr = ":8090"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting pipeline worker", "env", cfg.Env, "queue", cfg.QueueName, "concurrency", cfg.QueueConcurrency)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, migrations.Files)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)

	queueClient, err := queue.NewClient(cfg, log)
	if err != nil {
		log.Error("failed to initialize queue client", "error", err)
		panic("failed to initialize queue client: " + err.Error())
	}
	defer func() {
		_ = queueClient.Close()
	}()

	ledger := queue.NewLedger(queue.DefaultCompletedCap, queue.DefaultDeadCap)
	worker, err := queue.NewWorker(cfg, ledger, log)
	if err != nil {
		log.Error("failed to initialize queue worker", "error", err)
		panic("failed to initialize queue worker: " + err.Error())
	}

	whatsappClient := whatsapp.NewClient(cfg, log)
	if whatsappClient == nil {
		log.Warn("WHATSAPP_GATEWAY_URL not configured; outbound messages disabled")
	}
	var sender whatsapp.Sender
	if whatsappClient != nil {
		sender = whatsappClient
	}

	gemini, err := analysis.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize llm client", "error", err)
		panic("failed to initialize llm client: " + err.Error())
	}
	var llm analysis.Completer
	if gemini != nil {
		llm = gemini
	} else {
		log.Warn("GEMINI_API_KEY not configured; coaching analysis disabled")
	}

	mlClient := analysis.NewMLClient(cfg, log)
	if mlClient == nil {
		log.Info("ML_SERVICE_URL not configured; analytics branch disabled")
	}

	chatRepo := chat.New(pool)
	leadsRepo := repository.New(pool)
	leadsSvc := leadsvc.New(leadsRepo, eventBus, cfg, log)
	scoringSvc := scoring.New(leadsRepo, chatRepo, log)
	analysisRepo := analysis.NewRepository(pool)

	orchestrator := analysis.NewOrchestrator(
		chatRepo,
		analysisRepo,
		mlClient,
		llm,
		sender,
		leadsSvc,
		scoringSvc,
		eventBus,
		cfg.IsMLAgentEnabled(),
		log,
	)
	orchestrator.Register(worker)

	alertsSvc := alerts.NewService(alerts.NewRepository(pool), mlClient, sender, eventBus, log)
	alertsSvc.Register(worker)

	scheduler, err := alerts.NewScheduler(cfg, queueClient, log)
	if err != nil {
		log.Error("failed to initialize alert scheduler", "error", err)
		panic("failed to initialize alert scheduler: " + err.Error())
	}

	admin := &http.Server{
		Addr:              adminAddr,
		Handler:           adminMux(pool, ledger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Run(gctx)
	})

	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	g.Go(func() error {
		log.Info("worker admin server listening", "addr", adminAddr)
		if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return admin.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("worker stopped with error", "error", err)
		panic("worker stopped with error: " + err.Error())
	}

	log.Info("worker stopped")
}

func adminMux(pool *pgxpool.Pool, ledger *queue.Ledger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/v1/queue/ledger", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]queue.Record{
			"completed": ledger.Completed(),
			"dead":      ledger.Dead(),
		})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
