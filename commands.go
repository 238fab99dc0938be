package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/LepeyevaEmiliya/projects/logging"
	"github.com/LepeyevaEmiliya/projects/repositories"
	"github.com/LepeyevaEmiliya/projects/services"
	"github.com/LepeyevaEmiliya/projects/utils"
)

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.db.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema applied to %s database\n", a.db.DriverName())
			return nil
		},
	}
}

func usersCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(setActiveCmd(configPath, "activate", true))
	cmd.AddCommand(setActiveCmd(configPath, "deactivate", false))
	return cmd
}

func setActiveCmd(configPath *string, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: fmt.Sprintf("Mark an account as %sd", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			auth := services.NewAuthService(repositories.NewUserRepository(a.db), utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn))
			if err := auth.SetActive(cmd.Context(), args[0], active); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s %sd\n", args[0], use)
			return nil
		},
	}
}

func remindCmd(configPath *string) *cobra.Command {
	var within time.Duration

	cmd := &cobra.Command{
		Use:   "remind-deadlines",
		Short: "Notify assignees of unfinished tasks due within the window",
		Long: `Creates one deadline_reminder notification per unfinished, assigned task
whose due date falls before now+within. Overdue tasks are included. A task
that already has a reminder for its assignee is skipped, so the command is
safe to run from cron.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			notifications := services.NewNotificationService(a.notifications, repositories.NewTaskRepository(a.db))
			sent, err := notifications.SendDeadlineReminders(cmd.Context(), within)
			if err != nil {
				logging.Logger.Errorf("Event ID: DEADLINE_REMINDERS_FAILED, Description: %v", err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %d deadline reminders\n", sent)
			return nil
		},
	}
	cmd.Flags().DurationVar(&within, "within", 24*time.Hour, "reminder window")
	return cmd
}
