// Package api provides a local HTTP API over the message archive and
// trust store. It is a convenience surface for tooling, not part of the
// wire protocol.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Vincent4486/CommuniDirect/pkg/keystore"
	"github.com/Vincent4486/CommuniDirect/pkg/storage"
)

// Server represents the local HTTP API server.
type Server struct {
	store      *keystore.Store
	archive    *storage.ArchiveDB
	router     *gin.Engine
	addr       string
	httpServer *http.Server
	startTime  time.Time

	// Dispatch is called by the send endpoint to deliver a staged message.
	Dispatch func(target string, port int, keyName string, body string) error
}

// Config holds server configuration.
type Config struct {
	Addr       string
	EnableCORS bool
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:       "127.0.0.1:9834",
		EnableCORS: true,
	}
}

// NewServer creates a new HTTP API server over the given store and archive.
func NewServer(store *keystore.Store, archive *storage.ArchiveDB, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	server := &Server{
		store:     store,
		archive:   archive,
		router:    router,
		addr:      config.Addr,
		startTime: time.Now(),
	}

	if config.EnableCORS {
		router.Use(CORSMiddleware())
	}
	router.Use(LoggingMiddleware())
	router.Use(gin.Recovery())

	server.setupRoutes()

	return server
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/status", s.handleStatus)
		v1.GET("/peers", s.handlePeers)
		v1.GET("/messages", s.handleMessages)
		v1.GET("/messages/:hash", s.handleMessage)
		v1.POST("/send", s.handleSend)
	}

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		fmt.Printf("🌐 HTTP API listening on %s\n", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("❌ API server error: %v\n", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}

// Stop stops the HTTP server.
func (s *Server) Stop() error {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
