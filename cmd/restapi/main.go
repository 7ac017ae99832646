// The restapi binary is the backing REST service the built-in tools call.
// It is deliberately trivial: the interesting behavior of the system lives in
// the orchestration loop, and keeping the backend dumb makes tool failures
// easy to reason about.
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
)

const defaultPort = "8001"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("WARNING: No .env file found for local development.")
		}
	}

	port := os.Getenv("REST_API_PORT")
	if port == "" {
		port = defaultPort
	}

	gin.SetMode(os.Getenv("GIN_MODE"))
	engine := gin.Default()

	engine.POST("/add", handleAdd)
	engine.GET("/hello", handleHello)
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%s", port), Handler: engine}
	runServerWithGracefulShutdown(srv)
}

func handleAdd(c *gin.Context) {
	var req struct {
		A *float64 `json:"a" binding:"required"`
		B *float64 `json:"b" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": *req.A + *req.B})
}

func handleHello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello from REST API!"})
}

// runServerWithGracefulShutdown handles the server lifecycle.
func runServerWithGracefulShutdown(srv *http.Server) {
	go func() {
		log.Printf("👂 REST API is listening on http://localhost%s", srv.Addr)
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
