package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/dileep-u-k/tool-orchestrator/internal/llm"
	"github.com/dileep-u-k/tool-orchestrator/internal/policy"
	"github.com/dileep-u-k/tool-orchestrator/internal/profile"
	"github.com/dileep-u-k/tool-orchestrator/internal/tip"
	"github.com/dileep-u-k/tool-orchestrator/internal/tools"
)

// main is the entry point for the orchestrator.
// Its primary role is the "Composition Root": it loads configuration,
// initializes all services, injects dependencies, and starts the server.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	buildInfo := GetBuildInfo()
	log.Printf("🚀 Starting Tool Orchestrator | Version: %s | Commit: %s", buildInfo.Version, buildInfo.GitCommit)

	// 1. LOAD CONFIGURATION
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("❌ FATAL: Configuration Error: %v", err)
	}
	log.Println("✅ Configuration loaded.")

	// 2. INITIALIZE SERVICES
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("❌ FATAL: Could not connect to Redis: %v", err)
	}

	modelClients, err := initializeModelClients(cfg)
	if err != nil {
		log.Fatalf("❌ FATAL: %v", err)
	}

	profiler := profile.NewProfiler(rdb)
	policyEngine := policy.NewEngine(policy.GreetingRule(tools.SayHelloName))

	var toolClient tip.Client
	if len(cfg.ToolPipeCommand) > 0 {
		pipeClient, err := tip.NewPipeClient(cfg.ToolPipeCommand[0], cfg.ToolPipeCommand[1:], 30*time.Second)
		if err != nil {
			log.Fatalf("❌ FATAL: Could not spawn tool server: %v", err)
		}
		defer pipeClient.Close()
		toolClient = pipeClient
		log.Printf("✅ Tool transport: pipe (%s)", cfg.ToolPipeCommand[0])
	} else {
		toolClient = tip.NewHTTPClient(cfg.ToolServerURL, 30*time.Second)
		log.Printf("✅ Tool transport: http (%s)", cfg.ToolServerURL)
	}

	handler := NewOrchestratorHandler(modelClients, profiler, policyEngine, toolClient, cfg, rdb)
	log.Println("✅ All services initialized.")

	// 3. START BACKGROUND PROCESSES
	go startHealthChecker(cfg, modelClients, profiler)

	// 4. SETUP AND RUN THE WEB SERVER
	gin.SetMode(os.Getenv("GIN_MODE"))
	engine := gin.Default()
	v1 := engine.Group("/api/v1")
	{
		v1.POST("/ask", handler.HandleAsk)
	}
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": buildInfo.Version})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: fmt.Sprintf(":%s", port), Handler: engine}
	runServerWithGracefulShutdown(srv)
}

// initializeModelClients creates instances of the model clients based on config.
func initializeModelClients(cfg *AppConfig) (map[string]llm.Client, error) {
	clients := make(map[string]llm.Client)
	for _, modelID := range cfg.EnabledModels {
		var (
			client llm.Client
			err    error
		)
		switch {
		case strings.HasPrefix(modelID, "gpt"):
			client, err = llm.NewOpenAIClient(cfg.APIKeys[modelID], cfg.OpenAIBaseURL, modelID)
		case strings.HasPrefix(modelID, "gemini"):
			client, err = llm.NewGeminiClient(cfg.APIKeys[modelID], modelID)
		default:
			client, err = llm.NewOllamaClient(cfg.OllamaHost, modelID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create client for %s: %w", modelID, err)
		}
		clients[modelID] = client
	}
	log.Printf("✅ %d model clients initialized.", len(clients))
	return clients, nil
}

// startHealthChecker runs a background goroutine to proactively check model health.
func startHealthChecker(cfg *AppConfig, clients map[string]llm.Client, profiler *profile.Profiler) {
	ticker := time.NewTicker(cfg.Settings.HealthCheckInterval())
	defer ticker.Stop()

	log.Println("🩺 Health checker started.")

	runChecks := func() {
		log.Println("🩺 Running proactive health checks...")
		for _, modelID := range cfg.EnabledModels {
			client, ok := clients[modelID]
			if !ok {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			// The probe asks for the decision format the loop uses, so a
			// model that cannot produce it is reported unhealthy.
			probe := []llm.Message{{Role: llm.RoleUser, Content: `Reply with exactly {"final": "ok"}.`}}

			_, err := client.Complete(ctx, probe)
			cancel()

			isHealthy := err == nil
			profiler.RecordHealthCheck(context.Background(), modelID, isHealthy)
			log.Printf("Health check for %s: Healthy = %v", modelID, isHealthy)
		}
	}

	go runChecks()
	for range ticker.C {
		runChecks()
	}
}

// runServerWithGracefulShutdown handles the server lifecycle.
func runServerWithGracefulShutdown(srv *http.Server) {
	go func() {
		log.Printf("👂 Orchestrator is listening on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Listen error: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server shutdown failed:", err)
	}

	log.Println("👋 Server exited gracefully.")
}
