package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/aikuplatform/authbridge/appsession"
	"github.com/aikuplatform/authbridge/authflow"
	"github.com/aikuplatform/authbridge/authstate"
	"github.com/aikuplatform/authbridge/enrich"
	"github.com/aikuplatform/authbridge/identity/supabase"
	"github.com/aikuplatform/authbridge/internal/config"
	"github.com/aikuplatform/authbridge/server"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	provider := supabase.New(c.GetSupabaseURL(), c.GetSupabaseAnonKey(), c.GetRedirectURL(),
		supabase.WithScopes(c.GetScopes()),
	)

	// Web sign-ins are completed server-side, so this process carries its own
	// coordinator with durable pending state. Mobile flows only pass through
	// as deep links; their coordinator runs inside the app.
	coordinator, err := authflow.New(
		authstate.NewFileStore(c.GetStateFilePath()),
		provider,
		authflow.WithTTL(c.GetStateTTL()),
		authflow.WithAnalyzer(enrich.New(c.GetEnrichmentURL())),
		authflow.WithSessionRepo(appsession.NewInMemoryRepo()),
		authflow.WithEnrichmentPolicy(authflow.EnrichmentBestEffort),
		authflow.WithLogger(zerologlog.Logger),
	)
	if err != nil {
		return fmt.Errorf("authflow.New: %w", err)
	}

	redirector, err := server.New(c, provider, server.WithCoordinator(coordinator))
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: redirector}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
