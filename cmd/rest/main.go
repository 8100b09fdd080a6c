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

	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/rest"
	"github.com/atendix/atendix/internal/rest/middleware/timeout"
	"github.com/atendix/atendix/internal/setup"
)

// RESTLogDir specifies where REST server log files are stored.
const RESTLogDir = "logs/rest_logs"

// Server timeouts. WriteTimeout leaves headroom over the per-request
// deadline applied by the router's timeout middleware.
const (
	ReadTimeout     = 5 * time.Second
	WriteTimeout    = timeout.RequestTimeout + 5*time.Second
	ShutdownTimeout = 30 * time.Second
)

func main() {
	app, err := setup.InitializeApp(context.Background(), RESTLogDir)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup()

	handler := rest.NewServer(app.Store, app.Logger)
	addr := fmt.Sprintf("%s:%d", app.Config.API.Host, app.Config.API.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
	}

	go func() {
		log.Printf("Dashboard API started on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("Failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		app.Logger.Error("Server shutdown failed", zap.Error(err))
	}
}
