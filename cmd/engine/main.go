// Workflow Engine - executes workflow graphs (spec.md's execution engine).
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/smilemakc/workflow-engine/internal/config"
	"github.com/smilemakc/workflow-engine/internal/credentials"
	"github.com/smilemakc/workflow-engine/internal/crypto"
	"github.com/smilemakc/workflow-engine/internal/domain"
	"github.com/smilemakc/workflow-engine/internal/durablestep"
	"github.com/smilemakc/workflow-engine/internal/executor"
	"github.com/smilemakc/workflow-engine/internal/executor/agent"
	"github.com/smilemakc/workflow-engine/internal/executor/tools"
	"github.com/smilemakc/workflow-engine/internal/logging"
	"github.com/smilemakc/workflow-engine/internal/repository"
	"github.com/smilemakc/workflow-engine/internal/rundriver"
	"github.com/smilemakc/workflow-engine/internal/status"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Logging)
	logger.Info("starting workflow engine")

	encryptionKey := cfg.Engine.EncryptionKey
	if encryptionKey == "" {
		generated, genErr := crypto.GenerateKeyHex()
		if genErr != nil {
			logger.Error("failed to generate encryption key", "error", genErr)
			os.Exit(1)
		}
		encryptionKey = generated
		logger.Warn("WORKFLOW_ENGINE_ENCRYPTION_KEY not set; generated an ephemeral key for this process")
	}
	encryption, err := crypto.NewEncryptionService(encryptionKey, nil)
	if err != nil {
		logger.Error("failed to initialize encryption service", "error", err)
		os.Exit(1)
	}

	repo := repository.NewMemory()
	credStore := credentials.New(repo, encryption)

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	var runtime durablestep.Runtime
	if err != nil {
		logger.Warn("invalid redis url, falling back to in-process durable-step runtime", "error", err)
		runtime = durablestep.NewMemoryRuntime(durablestep.DefaultRetryPolicy())
	} else {
		redisOpts.Password = cfg.Redis.Password
		redisOpts.DB = cfg.Redis.DB
		redisOpts.PoolSize = cfg.Redis.PoolSize
		redisClient := redis.NewClient(redisOpts)
		runtime = durablestep.NewRedisRuntime(redisClient, durablestep.DefaultRetryPolicy(), cfg.Redis.StepTTL)
		logger.Info("durable-step runtime backed by redis", "url", cfg.Redis.URL)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	catalog := tools.NewMemoryCatalog()

	registry := executor.NewRegistry()
	registry.Register(domain.KindInitial, executor.NewManualTrigger())
	registry.Register(domain.KindManualTrigger, executor.NewManualTrigger())
	registry.Register(domain.KindGoogleFormTrigger, executor.NewGoogleFormTrigger())
	registry.Register(domain.KindStripeTrigger, executor.NewStripeTrigger())
	registry.Register(domain.KindHTTPRequest, executor.NewHTTP(httpClient))
	registry.Register(domain.KindGemini, executor.NewLLM(domain.KindGemini, "gemini", credStore))
	registry.Register(domain.KindOpenAI, executor.NewLLM(domain.KindOpenAI, "openai", credStore))
	registry.Register(domain.KindAnthropic, executor.NewLLM(domain.KindAnthropic, "anthropic", credStore))
	registry.Register(domain.KindDiscord, executor.NewDiscord(httpClient))
	registry.Register(domain.KindSlack, executor.NewSlack(httpClient))
	registry.Register(domain.KindChatModel, executor.NewChatModelNoOp())
	registry.Register(domain.KindMemory, executor.NewMemoryNoOp())
	registry.Register(domain.KindAIAgent, agent.New(repo, credStore, httpClient, catalog, catalog))

	logger.Info("executor registry populated")

	hub := status.NewHub(logger)
	go hub.Run()

	jwtAuth := status.NewJWTAuth([]byte(orDefault(cfg.StatusCh.JWTSecret, "dev-only-insecure-secret-change-me")))
	statusHandler := status.NewHandler(hub, jwtAuth, logger)

	driver := rundriver.New(registry, runtime)

	mux := http.NewServeMux()
	mux.Handle("/status", statusHandler)
	mux.HandleFunc("/runs", runHandler(driver, repo, hub, jwtAuth, logger))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	server := &http.Server{
		Addr:         ":8080",
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		logger.Info("shutdown initiated", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
		logger.Info("server stopped")
	}
}

// runRequest is the body of a POST /runs request: run the named workflow
// with an initial context seeded for the run (e.g. trigger payloads,
// userPrompt fields a caller supplies ahead of time).
type runRequest struct {
	OrganizationID string         `json:"organizationId"`
	WorkflowID     string         `json:"workflowId"`
	Initial        map[string]any `json:"initial"`
}

type runResponse struct {
	RunID     string         `json:"runId"`
	StatusURL string         `json:"statusUrl"`
	Context   map[string]any `json:"context,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// runHandler starts one workflow run per request, synchronously, and
// returns the final context alongside a status-channel subscription URL a
// caller could have used to watch it live.
func runHandler(driver *rundriver.Driver, repo repository.WorkflowRepository, hub *status.Hub, auth *status.JWTAuth, logger interface {
	Error(msg string, args ...any)
}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req runRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		wf, err := repo.GetWorkflow(r.Context(), req.OrganizationID, req.WorkflowID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		runID := uuid.New().String()
		token, _ := auth.IssueToken(runID, time.Minute)
		publisher := hub.RunPublisher(runID)

		result, err := driver.Run(r.Context(), wf, domain.RunContext(req.Initial), runID, publisher)
		resp := runResponse{RunID: runID, StatusURL: "/status?token=" + token}
		if err != nil {
			logger.Error("run failed", "run_id", runID, "error", err)
			resp.Error = err.Error()
			w.WriteHeader(http.StatusInternalServerError)
		}
		resp.Context = map[string]any(result)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
