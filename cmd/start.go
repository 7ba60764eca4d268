package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"visit-tracker/core/loader"
	"visit-tracker/core/logger"
	"visit-tracker/core/metrics"
	"visit-tracker/core/middleware/auth"
	"visit-tracker/core/middleware/rayid"
	"visit-tracker/feature/integrity"
	"visit-tracker/feature/visits"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "visit-tracker/docs/swagger"
)

// @title Visit Tracker API
// @version 1.0
// @description API for reconciling intersection snapshots into visits.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the visit tracker server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// 1. Configuration, store, lock and archive
		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()
		logg := rt.logger
		zap.ReplaceGlobals(logg)

		if err := rt.store.Migrate(ctx); err != nil {
			return err
		}

		// 2. Initialize Fiber App
		app := newApp(rt)

		// 3. Start Server
		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
			errCh <- app.Listen(":" + rt.cfg.Server.Port)
		}()

		// 4. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		select {
		case <-c:
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed to start: %w", err)
			}
			return nil
		}

		logg.Info("Shutting down server...", zap.Duration("timeout", rt.cfg.Server.ShutdownTimeout()))
		if err := app.ShutdownWithTimeout(rt.cfg.Server.ShutdownTimeout()); err != nil {
			logg.Warn("Shutdown did not complete cleanly", zap.Error(err))
		}
		return nil
	},
}

// newApp builds the fiber app with middleware and every feature mounted.
func newApp(rt *runtime) *fiber.App {
	logg := rt.logger

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true, // We log our own startup message
		BodyLimit:             rt.cfg.Server.BodyLimit(),
	})

	// Middleware Registration
	// 1. RayID (Must be first to trace everything)
	app.Use(rayid.New())

	// 2. Logging Middleware (Zap + RayID)
	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	// 3. Public endpoints
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/swagger/*", swagger.HandlerDefault)
	metrics.Register(app)

	// 4. Auth (Protect API)
	app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

	// 5. Load Features
	mgr := loader.NewManager()
	mgr.Register(visits.NewFeature(rt.service))
	mgr.Register(integrity.NewFeature(rt.store, rt.db, logg))

	loaded, err := mgr.LoadAll(app)
	if err != nil {
		logg.Fatal("Failed to load features", zap.Error(err))
	}
	logg.Info("Features loaded", zap.Strings("features", loaded))

	return app
}

func init() {
	RootCmd.AddCommand(startCmd)
}
