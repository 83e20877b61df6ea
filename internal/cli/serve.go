package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eleven-am/todolist/internal/logger"
	"github.com/eleven-am/todolist/internal/migrator"
	"github.com/eleven-am/todolist/internal/store"
	"github.com/eleven-am/todolist/internal/todo"
	"github.com/eleven-am/todolist/internal/web"
	"github.com/spf13/cobra"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("auto-migrate") {
				cfg.Database.AutoMigrate = autoMigrate
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "sync the schema before serving")
	return cmd
}

func runServe(ctx context.Context, cfg *Config, out io.Writer) error {
	log := logger.CLI()

	dbCfg, err := cfg.DBConfig()
	if err != nil {
		return err
	}
	db, err := dbCfg.Connect(ctx)
	if err != nil {
		if migrator.IsDatabaseMissing(err) {
			return fmt.Errorf("%w (run `todo migrate --create-if-not-exists` first)", err)
		}
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		plan, err := migrator.New(dbCfg).Sync(ctx, db, migrator.Options{})
		if err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		log.Info("schema synced", "statements", len(plan.Statements))
	}

	st := store.New(db)
	st.Use(store.LoggingMiddleware(logger.DB()))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           web.NewRouter(web.NewHandler(todo.NewService(st))),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	fmt.Fprintf(out, "Listening on %s\n", ln.Addr())

	return serveHTTP(ctx, srv, ln, cfg.Server.ShutdownTimeout)
}

// serveHTTP serves until ctx is done, then drains in-flight requests for at
// most timeout.
func serveHTTP(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.CLI().Info("shutting down", "timeout", timeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
