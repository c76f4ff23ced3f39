package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"chroni/internal/app"
	"chroni/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runApp reads the config, creates an App, runs fn, and finalizes the
// operation record. operation identifies the CLI command being run
// (e.g. "Track", "ScanAll").
func runApp(operation string, parameters []string, fn func(*app.App) error) error {
	defaults, err := app.GetDefaults()
	if err != nil {
		return fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return fmt.Errorf("reading config (run 'chroni config init' first): %w", err)
	}

	a, err := app.NewApp(cfg, operation, parameters...)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}

	err = fn(a)
	if err != nil {
		a.MarkFailed()
	}
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

var rootCmd = &cobra.Command{
	Use:   "chroni",
	Short: "Lightweight local version history for text files",
}

// config commands

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Data Dir: %s\n", defaults["base_dir"])
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
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:  %s\n", cfg.LogDir)
		fmt.Printf("Database: %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Exclude:  %s\n", strings.Join(cfg.Filesystem.Exclude, ", "))
		return nil
	},
}

// tracking commands

var trackCmd = &cobra.Command{
	Use:   "track PATH",
	Short: "Start tracking a file or folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp("Track", args, func(a *app.App) error {
			path, tracked, err := a.Track(args[0])
			if err != nil {
				return err
			}
			if tracked {
				fmt.Printf("Now tracking: %s\n", path)
			} else {
				fmt.Printf("Already tracking: %s\n", path)
			}
			return nil
		})
	},
}

var untrackCmd = &cobra.Command{
	Use:   "untrack PATH",
	Short: "Stop tracking, but keep history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp("Untrack", args, func(a *app.App) error {
			path, ok, err := a.Untrack(args[0])
			if err != nil {
				return err
			}
			if ok {
				fmt.Printf("Stopped tracking: %s\n", path)
			} else {
				fmt.Printf("Not currently tracking: %s\n", path)
			}
			return nil
		})
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget PATH",
	Short: "Remove all history of a path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp("Forget", args, func(a *app.App) error {
			path, ok, err := a.Forget(args[0])
			if err != nil {
				return err
			}
			if ok {
				fmt.Printf("Removed all history for: %s\n", path)
			} else {
				fmt.Printf("No history found for: %s\n", path)
			}
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked files and folders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp("ListTracked", nil, func(a *app.App) error {
			tracked, err := a.ListTracked()
			if err != nil {
				return err
			}
			if len(tracked) == 0 {
				fmt.Println("No files or folders are currently being tracked.")
				return nil
			}
			fmt.Println("Currently tracked:")
			for _, path := range tracked {
				fmt.Printf("  %s\n", path)
			}
			return nil
		})
	},
}

// scanning and history commands

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan tracked files for changes and store diffs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp("ScanAll", nil, func(a *app.App) error {
			changed, err := a.ScanAll()
			if err != nil {
				return err
			}
			if len(changed) == 0 {
				fmt.Println("No changes detected.")
				return nil
			}
			fmt.Printf("Detected %d changes:\n", len(changed))
			for _, path := range changed {
				fmt.Printf("  %s\n", path)
			}
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history PATH",
	Short: "Show version history of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return runApp("History", args, func(a *app.App) error {
			versions, err := a.History(args[0], limit)
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				fmt.Printf("No history found for: %s\n", args[0])
				return nil
			}

			fmt.Printf("History for: %s\n", args[0])
			for _, v := range versions {
				fmt.Printf("Version %d - %s\n", v.Number, v.FormattedTimestamp)
				if v.Diff != nil {
					printDiffPreview(*v.Diff, 5)
				}
			}
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show PATH",
	Short: "Show the latest or a specific version of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ver, _ := cmd.Flags().GetInt64("ver")
		return runApp("Show", args, func(a *app.App) error {
			v, err := a.Show(args[0], ver)
			if err != nil {
				return err
			}
			if v == nil {
				fmt.Printf("No version found for: %s\n", args[0])
				return nil
			}
			fmt.Printf("File: %s (Version %d)\n", args[0], v.Number)
			fmt.Printf("Date: %s\n", v.FormattedTimestamp)
			if v.Content != nil {
				fmt.Print(*v.Content)
			}
			return nil
		})
	},
}

// restore commands

var restoreCmd = &cobra.Command{
	Use:   "restore PATH",
	Short: "Restore a file to a specific version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ver, _ := cmd.Flags().GetInt64("ver")
		return runApp("Restore", args, func(a *app.App) error {
			path, err := a.Restore(args[0], ver)
			if err != nil {
				return err
			}
			fmt.Printf("Restored %s to version %d\n", path, ver)
			return nil
		})
	},
}

var restoreDateCmd = &cobra.Command{
	Use:   "restore-date PATH DATE",
	Short: "Restore a file to the version closest to a date",
	Long: `Restore a file to the version recorded closest to, but not after,
the given date. Accepted formats: YYYY-MM-DD, "YYYY-MM-DD HH:MM",
"YYYY-MM-DD HH:MM:SS".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp("RestoreDate", args, func(a *app.App) error {
			v, err := a.RestoreDate(args[0], args[1])
			if err != nil {
				return err
			}
			if v == nil {
				fmt.Printf("No version found at or before %q for: %s\n", args[1], args[0])
				return nil
			}
			fmt.Printf("Restored %s to version %d from %s\n", args[0], v.Number, v.FormattedTimestamp)
			return nil
		})
	},
}

// snapshot commands

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage named snapshots",
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a named snapshot of the current state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, _ := cmd.Flags().GetString("note")
		return runApp("SnapshotCreate", args, func(a *app.App) error {
			count, err := a.SnapshotCreate(args[0], note)
			if err != nil {
				return err
			}
			fmt.Printf("Created snapshot %q covering %d files\n", args[0], count)
			return nil
		})
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp("SnapshotList", nil, func(a *app.App) error {
			snapshots, err := a.SnapshotList()
			if err != nil {
				return err
			}
			if len(snapshots) == 0 {
				fmt.Println("No snapshots found.")
				return nil
			}
			fmt.Println("Snapshots:")
			for _, s := range snapshots {
				note := ""
				if s.Note != "" {
					note = " - " + s.Note
				}
				fmt.Printf("  %s (%s)%s\n", s.Name, s.Timestamp.Format("2006-01-02 15:04:05"), note)
			}
			return nil
		})
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore NAME",
	Short: "Restore all files to a snapshot state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp("SnapshotRestore", args, func(a *app.App) error {
			result, err := a.SnapshotRestore(args[0])
			if err != nil {
				return err
			}
			for _, path := range result.Restored {
				fmt.Printf("Restored: %s\n", path)
			}
			for path, ferr := range result.Failed {
				fmt.Printf("Failed:   %s (%v)\n", path, ferr)
			}
			if !result.OK() {
				return errors.New("some snapshot entries could not be restored")
			}
			fmt.Printf("Restored to snapshot: %s\n", args[0])
			return nil
		})
	},
}

// maintenance commands

var compactCmd = &cobra.Command{
	Use:   "compact PATH",
	Short: "Drop redundant stored content from old versions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetInt64("keep")
		return runApp("Compact", args, func(a *app.App) error {
			dropped, err := a.Compact(args[0], keep)
			if err != nil {
				return err
			}
			fmt.Printf("Compacted %d versions\n", dropped)
			return nil
		})
	},
}

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "View recent operations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return runApp("ListOperations", nil, func(a *app.App) error {
			ops, err := a.Operations(limit)
			if err != nil {
				return err
			}
			if len(ops) == 0 {
				fmt.Println("No operations recorded.")
				return nil
			}
			for _, op := range ops {
				duration := ""
				if op.FinishedAt != nil {
					duration = op.FinishedAt.Sub(op.StartedAt).String()
				}
				fmt.Printf("%s  %-15s  %s  %-8s  %s\n",
					op.ID[:8],
					op.Operation,
					op.StartedAt.Format("2006-01-02 15:04:05"),
					op.Status,
					duration,
				)
			}
			return nil
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch tracked paths and record changes automatically",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp("Watch", nil, func(a *app.App) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Println("Watching tracked paths. Press Ctrl-C to stop.")
			return a.Watch(ctx)
		})
	},
}

// printDiffPreview prints the first few meaningful lines of a diff,
// indented, with an ellipsis when truncated.
func printDiffPreview(diff string, max int) {
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	shown := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if shown == max {
			fmt.Println("    ...")
			break
		}
		fmt.Printf("    %s\n", line)
		shown++
	}
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	snapshotCmd.AddCommand(snapshotCreateCmd)
	snapshotCreateCmd.Flags().String("note", "", "Optional note for the snapshot")
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)

	historyCmd.Flags().IntP("limit", "n", 0, "Maximum number of versions to show (0 = all)")
	showCmd.Flags().Int64("ver", 0, "Show a specific version (default: latest)")
	restoreCmd.Flags().Int64("ver", 0, "Version number to restore")
	restoreCmd.MarkFlagRequired("ver")
	compactCmd.Flags().Int64("keep", 10, "Keep full content on every Nth version")
	opsCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(untrackCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(restoreDateCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(compactCmd)
	rootCmd.AddCommand(opsCmd)
	rootCmd.AddCommand(watchCmd)
}
