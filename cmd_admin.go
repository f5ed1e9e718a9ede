package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/akinalp/workdesk/config"
	"github.com/akinalp/workdesk/database"
	"github.com/akinalp/workdesk/pkg/logger"
	"github.com/akinalp/workdesk/pkg/push"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger.Init(cfg.Log.Level, cfg.Log.Format)

		db, err := database.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.Migrate(database.Migrations())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one reminder and cleanup sweep and exit",
	Long: `Runs the same job the server schedules every SWEEP_INTERVAL_MINUTES.
Useful from cron when the server runs with several replicas.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		res, err := a.svcs.Sweeper.RunOnce(cmd.Context(), time.Now())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

var (
	adminEmail    string
	adminPassword string
	adminName     string
)

var createAdminCmd = &cobra.Command{
	Use:     "create-admin",
	Short:   "Create an admin account unless the email already exists",
	Example: `  workdesk create-admin --email ops@example.com --password 's3cret-pass' --name "Ops"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		user, created, err := a.svcs.Employee.EnsureAdmin(cmd.Context(), adminEmail, adminPassword, adminName)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Email, user.ID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, nothing to do\n", user.Email)
		}
		return nil
	},
}

var vapidKeysCmd = &cobra.Command{
	Use:   "vapid-keys",
	Short: "Generate a VAPID key pair for web push",
	RunE: func(cmd *cobra.Command, args []string) error {
		pub, priv, err := push.GenerateKeys()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", pub, priv)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, sweepCmd, createAdminCmd, vapidKeysCmd)

	createAdminCmd.Flags().StringVar(&adminEmail, "email", os.Getenv("ADMIN_EMAIL"), "admin email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (min 8 chars)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "full name")
	_ = createAdminCmd.MarkFlagRequired("password")
}
