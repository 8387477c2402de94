package cli

import (
	"github.com/spf13/cobra"

	"github.com/freedroid/freedroid/internal/models"
)

// AddShortcuts adds shortcut commands to the root command.
// Shortcuts copy the named files only and never expand folders.
func AddShortcuts(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newGetShortcut())
	rootCmd.AddCommand(newPutShortcut())
}

// newGetShortcut creates the 'get' shortcut command.
func newGetShortcut() *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "get <file> [file...]",
		Short: "Pull individual device files",
		Long: `Pull the named device files into one folder. Unlike 'pull', folders are
not expanded, and files sharing a name get a " (n)" suffix.

Examples:
  freedroid get /sdcard/Download/a.pdf /sdcard/Documents/a.pdf
  freedroid get DCIM/Camera/IMG_0001.jpg --to .`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			app, err := newDeviceApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			paths := make([]string, len(args))
			for i, a := range args {
				paths[i] = app.remoteArg(a)
			}
			ts := app.transfer()
			return runTransfer(cmd, app, func() (*models.OperationSummary, error) {
				return ts.PullFiles(ctx, app.deviceID, paths, dest)
			})
		},
	}

	cmd.Flags().StringVarP(&dest, "to", "o", "", "Destination folder on this computer (default from configuration)")
	return cmd
}

// newPutShortcut creates the 'put' shortcut command.
func newPutShortcut() *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "put <file> [file...]",
		Short: "Push individual files to the device",
		Long: `Push the named files into one device folder without expanding folders.

Examples:
  freedroid put report.pdf
  freedroid put *.mp3 --to /sdcard/Music`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			app, err := newDeviceApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			ts := app.transfer()
			return runTransfer(cmd, app, func() (*models.OperationSummary, error) {
				return ts.PushFiles(ctx, app.deviceID, args, dest)
			})
		},
	}

	cmd.Flags().StringVarP(&dest, "to", "d", "", "Destination folder on the device (default from configuration)")
	return cmd
}
