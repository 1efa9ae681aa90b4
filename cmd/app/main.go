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

	"deliverytasks/cmd"
	"deliverytasks/internal/adapters/out/postgres"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var envFile string

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Fatalf("deliverytasks: %v", err)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "deliverytasks",
		Short:         "Delivery task lifecycle service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional file with environment variables")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API and the ledger audit job",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return serve(c.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return migrate(c.Context())
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Migrate and load demo users and tasks",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return seed(c.Context())
			},
		},
	)
	return root
}

func open(ctx context.Context) (*cmd.CompositionRoot, error) {
	config, err := cmd.LoadConfig(envFile)
	if err != nil {
		return nil, err
	}
	logger := config.NewLogger()

	db, err := postgres.Open(config.DSN(), logger)
	if err != nil {
		return nil, err
	}

	return cmd.NewCompositionRoot(ctx, config, db, logger)
}

func migrate(ctx context.Context) error {
	app, err := open(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Migrate(ctx)
}

func seed(ctx context.Context) error {
	app, err := open(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if err = app.Migrate(ctx); err != nil {
		return err
	}
	report, err := app.Seed(ctx)
	if errors.Is(err, cmd.ErrAlreadySeeded) {
		fmt.Println("Database is already seeded.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d users, %d tasks, %d transitions.\n", report.Users, report.Tasks, report.Transitions)
	return nil
}

func serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := open(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if err = app.Migrate(ctx); err != nil {
		return err
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	e, err := app.CreateHTTPServer()
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- e.Start(fmt.Sprintf("0.0.0.0:%s", app.Config().HTTPPort))
	}()
	app.Logger().InfoContext(ctx, "HTTP server started", "port", app.Config().HTTPPort)

	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	app.Logger().InfoContext(shutdownCtx, "Shutting down")
	return e.Shutdown(shutdownCtx)
}
