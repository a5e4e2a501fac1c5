package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"subdesk/internal/common"
	"subdesk/internal/models"
	"subdesk/internal/repositories"
	"subdesk/pkg/database"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig("migrate")
		if err != nil {
			return err
		}
		ctx := commandContext(cmd)
		pool, err := database.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		log.Info().Msg("database is up to date")
		return nil
	},
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Generate and deliver renewal reminders",
}

var generateDate string

var remindersGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Create the reminders due on a date (default today)",
	RunE: func(cmd *cobra.Command, args []string) error {
		reference := time.Now()
		if generateDate != "" {
			d, err := common.ParseDate(generateDate, "date")
			if err != nil {
				return err
			}
			reference = d
		}
		ctx := commandContext(cmd)
		a, err := bootstrap(ctx, "cli")
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.reminders.Generate(ctx, reference)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"date":    reference.UTC().Format(common.DateLayout),
			"created": len(result.Created),
			"skipped": result.Skipped,
		})
	},
}

var dispatchQueued bool

var remindersDispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Deliver pending reminders now, or hand them to the worker with --queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		a, err := bootstrap(ctx, "cli")
		if err != nil {
			return err
		}
		defer a.close()

		if dispatchQueued {
			queued, err := a.reminderJobs.EnqueueDue(ctx)
			if err != nil {
				return err
			}
			return printJSON(map[string]int{"queued": queued})
		}
		result, err := a.reminderJobs.DeliverDue(ctx)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var remindersLapsedCmd = &cobra.Command{
	Use:   "lapsed",
	Short: "Renew or expire subscriptions whose period has ended",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		a, err := bootstrap(ctx, "cli")
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.subscriptions.ProcessLapsed(ctx, time.Now())
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var exportStatus string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export subscriptions as CSV to object storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		a, err := bootstrap(ctx, "cli")
		if err != nil {
			return err
		}
		defer a.close()
		if a.exports == nil {
			return errNoExports
		}

		result, err := a.exports.ExportSubscriptions(ctx, repositories.SubscriptionFilter{
			Status: models.SubscriptionStatus(strings.ToLower(exportStatus)),
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage administrator accounts",
}

var (
	userEmail    string
	userName     string
	userPassword string
)

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an administrator; prompts for the password when not given",
	RunE: func(cmd *cobra.Command, args []string) error {
		password := userPassword
		if password == "" {
			var err error
			if password, err = readPassword(); err != nil {
				return err
			}
		}
		ctx := commandContext(cmd)
		a, err := bootstrap(ctx, "cli")
		if err != nil {
			return err
		}
		defer a.close()

		user, err := a.auth.CreateUser(ctx, userEmail, userName, password)
		if err != nil {
			return err
		}
		return printJSON(user)
	},
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	remindersGenerateCmd.Flags().StringVar(&generateDate, "date", "", "reference date as YYYY-MM-DD")
	remindersDispatchCmd.Flags().BoolVar(&dispatchQueued, "queue", false, "enqueue deliveries for the worker instead of sending inline")
	remindersCmd.AddCommand(remindersGenerateCmd, remindersDispatchCmd, remindersLapsedCmd)

	exportCmd.Flags().StringVar(&exportStatus, "status", "", "only export subscriptions with this status")
	rootCmd.AddCommand(exportCmd)

	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "administrator email")
	userCreateCmd.Flags().StringVar(&userName, "name", "", "display name")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "password (prompted when empty)")
	_ = userCreateCmd.MarkFlagRequired("email")
	userCmd.AddCommand(userCreateCmd)
}
