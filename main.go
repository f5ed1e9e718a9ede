package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/akinalp/workdesk/middleware"
)

// rootCmd runs the server when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "workdesk",
	Short: "Employee attendance, leave and approval server",
	Long: `workdesk tracks attendance and routes leave, permission, overtime and
work submission requests through the team lead / manager approval chain.

Configuration is read from the environment (and a .env file when present).`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	log.Info().Str("component", "main").Int("port", a.cfg.Server.Port).Str("timezone", a.loc.String()).Msg("workdesk starting")

	if err := ensureConfiguredAdmin(ctx, a); err != nil {
		return err
	}

	go a.hub.Run()

	limiters := initRateLimiters()
	defer limiters.Close()

	h := initHandlers(a.svcs, limiters, a.hub, a.policy, a.loc, a.cfg)

	mux := http.NewServeMux()
	initRoutes(mux, h, a.svcs.Auth, a.repos.User, a.reg)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   a.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept-Language"},
		ExposedHeaders:   []string{"Retry-After", "Content-Disposition"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           middleware.Recover(middleware.AccessLog(a.reg, corsHandler.Handler(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.svcs.Sweeper.Start()

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("component", "main").Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			a.svcs.Sweeper.Stop()
			a.hub.Shutdown()
			return fmt.Errorf("server: %w", err)
		}
	}

	log.Info().Str("component", "main").Msg("shutting down")

	// Sweeper first so no notification is fanned out to a closing hub, then
	// sockets, then in-flight HTTP requests.
	a.svcs.Sweeper.Stop()
	a.hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info().Str("component", "main").Msg("server stopped gracefully")
	return nil
}

// ensureConfiguredAdmin creates the ADMIN_EMAIL account on first start.
func ensureConfiguredAdmin(ctx context.Context, a *app) error {
	if a.cfg.Admin.Email == "" || a.cfg.Admin.Password == "" {
		return nil
	}
	user, created, err := a.svcs.Employee.EnsureAdmin(ctx, a.cfg.Admin.Email, a.cfg.Admin.Password, a.cfg.Admin.Name)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		log.Info().Str("component", "main").Str("user_id", user.ID).Str("email", user.Email).Msg("admin account created")
	}
	return nil
}
