package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/freedroid/freedroid/internal/adb"
	"github.com/freedroid/freedroid/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage freedroid configuration",
		Long: `Configuration management commands for freedroid.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  set   - Change one setting
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// configPath returns --config or the default location.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultConfigPath()
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for freedroid.

Use --force to overwrite an existing configuration without asking.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			return runConfigInit(cmd.InOrStdin(), cmd.OutOrStdout(), path, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")
	return cmd
}

func runConfigInit(in io.Reader, out io.Writer, path string, force bool) error {
	p := newPrompter(in, out)

	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
		if !p.confirm("Overwrite it?", false) {
			return nil
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		cfg = config.NewConfig()
	}

	fmt.Fprintln(out, "FreeDroid Configuration Setup")
	fmt.Fprintln(out, "=============================")
	fmt.Fprintln(out)

	detected := ""
	if found, err := adb.LocateTool(cfg.Bridge.ADBPath); err == nil {
		detected = found
	}
	adbPath := p.ask("adb executable (empty to search PATH)", detected)
	if adbPath != detected {
		cfg.Bridge.ADBPath = adbPath
	}

	cfg.Paths.PullFolder = p.ask("Folder for pulled files", cfg.Paths.PullFolder)
	cfg.Paths.PushFolder = p.ask("Device folder for pushed files", cfg.Paths.PushFolder)
	cfg.Paths.StartFolder = p.ask("Device folder to start browsing in", cfg.Paths.StartFolder)
	cfg.Transfer.CheckDiskSpace = p.confirm("Check free disk space before pulling?", cfg.Transfer.CheckDiskSpace)
	cfg.Notifications.Enabled = p.confirm("Show desktop notifications when transfers finish?", cfg.Notifications.Enabled)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	GetLogger().Info().Str("path", path).Msg("configuration saved")

	fmt.Fprintln(out)
	fmt.Fprintf(out, "✓ Configuration saved to: %s\n", path)
	return nil
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the effective configuration: the file's values with defaults
filled in for anything it does not set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig()
			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, cfg)
			}
			printConfig(out, cfg)

			if path, err := configPath(); err == nil {
				fmt.Fprintf(out, "\nConfiguration file: %s\n", path)
			}
			return nil
		},
	}
}

func printConfig(out io.Writer, cfg *config.Config) {
	adbPath := cfg.Bridge.ADBPath
	if adbPath == "" {
		adbPath = "<search PATH>"
	}
	logFile := cfg.LogFile()

	fmt.Fprintln(out, "[bridge]")
	fmt.Fprintf(out, "  adb_path:                %s\n", adbPath)
	fmt.Fprintf(out, "  command_timeout_seconds: %d\n", cfg.Bridge.CommandTimeoutSeconds)
	fmt.Fprintln(out, "[paths]")
	fmt.Fprintf(out, "  pull_folder:  %s\n", cfg.Paths.PullFolder)
	fmt.Fprintf(out, "  push_folder:  %s\n", cfg.Paths.PushFolder)
	fmt.Fprintf(out, "  start_folder: %s\n", cfg.Paths.StartFolder)
	fmt.Fprintln(out, "[browse]")
	fmt.Fprintf(out, "  follow_symlinks:  %t\n", cfg.Browse.FollowSymlinks)
	fmt.Fprintf(out, "  hide_system_dirs: %t\n", cfg.Browse.HideSystemDirs)
	fmt.Fprintln(out, "[device]")
	fmt.Fprintf(out, "  default_serial:        %s\n", cfg.Device.DefaultSerial)
	fmt.Fprintf(out, "  poll_interval_seconds: %d\n", cfg.Device.PollIntervalSeconds)
	fmt.Fprintln(out, "[transfer]")
	fmt.Fprintf(out, "  check_disk_space: %t\n", cfg.Transfer.CheckDiskSpace)
	fmt.Fprintln(out, "[notifications]")
	fmt.Fprintf(out, "  enabled:             %t\n", cfg.Notifications.Enabled)
	fmt.Fprintf(out, "  show_batch_complete: %t\n", cfg.Notifications.ShowBatchComplete)
	fmt.Fprintf(out, "  show_batch_failed:   %t\n", cfg.Notifications.ShowBatchFailed)
	fmt.Fprintln(out, "[logging]")
	fmt.Fprintf(out, "  file:  %s\n", logFile)
	fmt.Fprintf(out, "  level: %s\n", cfg.Logging.Level)
}

// newConfigSetCmd creates the 'config set' command.
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <section.key> <value>",
		Short: "Change one setting",
		Long: `Change one setting and save the configuration file.

Examples:
  freedroid config set paths.pull_folder ~/Phone
  freedroid config set transfer.check_disk_space false`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.Keys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveDefault
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			return runConfigSet(cmd.OutOrStdout(), path, args[0], args[1])
		},
	}
}

func runConfigSet(out io.Writer, path, key, value string) error {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(out, "✓ %s = %s\n", key, value)
	return nil
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration file location:")
			fmt.Fprintf(out, "  %s\n", path)
			fmt.Fprintln(out)

			if info, err := os.Stat(path); err == nil {
				fmt.Fprintln(out, "Status: File exists")
				fmt.Fprintf(out, "Size:     %d bytes\n", info.Size())
				fmt.Fprintf(out, "Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			} else if os.IsNotExist(err) {
				fmt.Fprintln(out, "Status: File does not exist (defaults are used)")
				fmt.Fprintln(out, "Run 'freedroid config init' to create it.")
			} else {
				fmt.Fprintf(out, "Status: Error checking file: %v\n", err)
			}
			return nil
		},
	}
}
