// The toolserver binary hosts the tool registry behind the HTTP tool
// invocation endpoints, so orchestrators can run in separate processes from
// the tools they invoke.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/dileep-u-k/tool-orchestrator/internal/registry"
	"github.com/dileep-u-k/tool-orchestrator/internal/tip"
	"github.com/dileep-u-k/tool-orchestrator/internal/tools"
)

const (
	defaultPort       = "8002"
	defaultRESTAPIURL = "http://localhost:8001"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("WARNING: No .env file found for local development.")
		}
	}

	port := os.Getenv("TOOL_SERVER_PORT")
	if port == "" {
		port = defaultPort
	}
	restAPIURL := os.Getenv("REST_API_URL")
	if restAPIURL == "" {
		restAPIURL = defaultRESTAPIURL
	}

	reg := registry.New()
	srv := tip.NewServer(reg)
	if err := tools.RegisterAll(reg, srv, restAPIURL); err != nil {
		log.Fatalf("❌ FATAL: Could not register tools: %v", err)
	}
	reg.Freeze()
	log.Printf("✅ Tool server initialized with %d tools.", reg.Count())

	// In stdio mode the orchestrator spawns this binary and owns both ends of
	// the pipe; stdout carries only protocol lines (log goes to stderr).
	if os.Getenv("TOOL_SERVER_MODE") == "stdio" {
		log.Println("👂 Tool server is speaking the pipe protocol on stdin/stdout.")
		if err := tip.ServePipe(context.Background(), srv, os.Stdin, os.Stdout); err != nil {
			log.Fatalf("❌ Pipe transport error: %v", err)
		}
		log.Println("👋 Pipe closed, server exiting.")
		return
	}

	gin.SetMode(os.Getenv("GIN_MODE"))
	engine := gin.Default()
	tip.MountRoutes(engine, srv)
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "tools": reg.Count()})
	})

	httpSrv := &http.Server{Addr: fmt.Sprintf(":%s", port), Handler: engine}
	runServerWithGracefulShutdown(httpSrv)
}

// runServerWithGracefulShutdown handles the server lifecycle.
func runServerWithGracefulShutdown(srv *http.Server) {
	go func() {
		log.Printf("👂 Tool server is listening on http://localhost%s", srv.Addr)
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
