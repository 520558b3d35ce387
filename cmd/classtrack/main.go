package main

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"classtrack-go/internal/app"
	"classtrack-go/internal/config"
	"classtrack-go/internal/database"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	// Local .env files carry DATABASE_URL and API keys in development;
	// absence is not an error.
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readConfig locates and reads the config file.
func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates an App. The caller must defer
// a.Close(). operation identifies the CLI command being run.
func newApp(operation string) (*app.App, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	smtpPassword := ""
	if operation == app.OpSendReport && cfg.Mailer.Type == "smtp" {
		smtpPassword, err = smtpPasswordFromEnvOrPrompt()
		if err != nil {
			return nil, err
		}
	}

	a, err := app.NewApp(cfg, operation, smtpPassword)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// smtpPasswordFromEnvOrPrompt reads SMTP_PASSWORD, falling back to an
// interactive prompt so the password never has to live in a file.
func smtpPasswordFromEnvOrPrompt() (string, error) {
	if pw := os.Getenv("SMTP_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "SMTP password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

var rootCmd = &cobra.Command{
	Use:   "classtrack",
	Short: "Course submission tracker",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init ROOT_FOLDER_ID",
	Short: "Initialize configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"], args[0])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Root folder: %s\n", cfg.RootFolderID)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Root folder: %s\n", cfg.RootFolderID)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Database:    %s\n", cfg.Database.Type)
		fmt.Printf("Mailer:      %s\n", cfg.Mailer.Type)
		fmt.Printf("Archive:     %s\n", cfg.Archive.Type)
		return nil
	},
}

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the course folders and record submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(app.OpScan)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.RunFullScan()
		if err != nil {
			return err
		}

		fmt.Printf("Scan #%d %s\n", res.SyncRunID, res.Status)
		fmt.Printf("Modules:     %d scanned, %d created\n", res.ModulesScanned, res.ModulesCreated)
		fmt.Printf("Files:       %d\n", res.TotalFiles)
		fmt.Printf("Submissions: %d recorded\n", res.SubmissionsCreated)
		fmt.Printf("Students:    %d new\n", res.StudentsCreated)
		if res.Unidentified > 0 {
			fmt.Printf("Skipped:     %d files could not be attributed\n", res.Unidentified)
		}
		for _, e := range res.Errors {
			fmt.Printf("  error: %s\n", e)
		}
		return nil
	},
}

// report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Manage reports",
}

var reportSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Render, email and archive an activity report",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		to, _ := cmd.Flags().GetStringSlice("to")

		a, err := newApp(app.OpSendReport)
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.RunReportCycle(days, to)
		if err != nil {
			return err
		}

		fmt.Printf("Report written to %s\n", path)
		return nil
	},
}

// stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show headline statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(app.OpStats)
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Stats()
		if err != nil {
			return err
		}

		fmt.Printf("Students:              %d\n", stats.TotalStudents)
		fmt.Printf("Modules:               %d\n", stats.TotalModules)
		fmt.Printf("Submissions:           %d\n", stats.TotalSubmissions)
		fmt.Printf("Submissions (7 days):  %d\n", stats.SubmissionsLastWeek)
		fmt.Printf("Active students (30d): %d\n", stats.ActiveStudentsLastMonth)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View sync run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(app.OpHistory)
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No sync runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := ""
			if r.CompletedAt != nil {
				d := r.CompletedAt.Sub(r.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-17s  %s  %-22s  files:%d  errors:%d  %s\n",
				r.ID,
				r.SyncType,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Status,
				r.FilesProcessed,
				r.Errors,
				duration,
			)
		}
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		if cfg.Database.Type != "postgres" {
			return fmt.Errorf("migrations only apply to postgres databases (configured: %s)", cfg.Database.Type)
		}

		if err := database.MigratePostgres(cfg.Database.URL); err != nil {
			return err
		}

		fmt.Println("Database schema is up to date.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	reportCmd.AddCommand(reportSendCmd)
	reportSendCmd.Flags().Int("days", 0, "Lookback window in days (default from config)")
	reportSendCmd.Flags().StringSlice("to", nil, "Recipients (default from config)")

	dbCmd.AddCommand(dbMigrateCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")
	rootCmd.AddCommand(dbCmd)
}
