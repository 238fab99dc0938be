package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/LepeyevaEmiliya/projects/handlers"
	"github.com/LepeyevaEmiliya/projects/logging"
	"github.com/LepeyevaEmiliya/projects/repositories"
	"github.com/LepeyevaEmiliya/projects/services"
	"github.com/LepeyevaEmiliya/projects/utils"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(configPath *string) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply the schema before serving")
	return cmd
}

func runServe(ctx context.Context, configPath string, migrate bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting TaskFlow API...")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if migrate {
		if err := a.db.Migrate(ctx); err != nil {
			return err
		}
	}

	users := repositories.NewUserRepository(a.db)
	projects := repositories.NewProjectRepository(a.db)
	tasks := repositories.NewTaskRepository(a.db)

	jwt := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	activity := services.NewActivityService(a.activityStore(ctx), projects)
	notifications := services.NewNotificationService(a.notifications, tasks)
	taskService := services.NewTaskService(tasks, projects, notifications, activity)

	router := handlers.NewRouter(cfg, handlers.Services{
		Auth:          services.NewAuthService(users, jwt),
		Projects:      services.NewProjectService(projects, users, activity),
		Tasks:         taskService,
		Comments:      services.NewCommentService(repositories.NewCommentRepository(a.db), taskService, projects, users, notifications, activity),
		Notifications: notifications,
		Activity:      activity,
		JWT:           jwt,
		DB:            a.db,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost:%s%s", cfg.Port, cfg.APIPrefix())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logging.Logger.Errorf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
			return err
		}
	case <-ctx.Done():
		logging.Logger.Info("Event ID: SERVER_SHUTDOWN, Description: Shutdown signal received, draining connections")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_FAILED, Description: Graceful shutdown failed: %v", err)
		return err
	}
	logging.Logger.Info("Event ID: SERVER_STOPPED, Description: Server stopped")
	return nil
}
