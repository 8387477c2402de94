package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/freedroid/freedroid/internal/models"
	"github.com/freedroid/freedroid/internal/progress"
	"github.com/freedroid/freedroid/internal/services"
)

// newPullCmd creates the 'pull' command.
func newPullCmd() *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "pull <path> [path...]",
		Short: "Copy files and folders from the device",
		Long: `Copy device files and folders to this computer. Folders are copied with
their structure under <destination>/<folder name>. Relative device paths are
taken from the configured start folder.

One failed file never stops the rest; the summary lists every item.

Examples:
  freedroid pull DCIM/Camera
  freedroid pull /sdcard/Download/report.pdf Music --to ~/Desktop/phone`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			app, err := newDeviceApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			browse := app.browse()
			sess := app.session()
			paths := make([]string, len(args))
			for i, a := range args {
				paths[i] = app.remoteArg(a)
			}
			if err := browse.Select(ctx, sess, paths...); err != nil {
				return err
			}

			// Folder sizes only feed the free space check
			if app.cfg.Transfer.CheckDiskSpace {
				for _, item := range sess.Selection.Items() {
					if !item.IsDirectory {
						continue
					}
					if size, err := browse.ComputeSize(ctx, app.deviceID, item.Path); err == nil {
						sess.Selection.UpdateSize(item.Path, size)
					}
				}
			}

			ts := app.transfer()
			return runTransfer(cmd, app, func() (*models.OperationSummary, error) {
				return ts.PullSelection(ctx, sess, dest)
			})
		},
	}

	cmd.Flags().StringVarP(&dest, "to", "o", "", "Destination folder on this computer (default from configuration)")
	return cmd
}

// newPushCmd creates the 'push' command.
func newPushCmd() *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "push <path> [path...]",
		Short: "Copy files and folders to the device",
		Long: `Copy files and folders from this computer to the device. Folders are
copied with their structure; symlinks inside them are skipped.

Examples:
  freedroid push notes.txt
  freedroid push ~/Music/Album --to /sdcard/Music`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			app, err := newDeviceApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			ts := app.transfer()
			sess := app.session()
			return runTransfer(cmd, app, func() (*models.OperationSummary, error) {
				return ts.PushPaths(ctx, sess, args, dest)
			})
		},
	}

	cmd.Flags().StringVarP(&dest, "to", "d", "", "Destination folder on the device (default from configuration)")
	return cmd
}

// runTransfer runs op with batch progress attached and prints its summary.
// A summary with any failure is reported as an error so the exit status
// reflects it.
func runTransfer(cmd *cobra.Command, app *deviceApp, op func() (*models.OperationSummary, error)) error {
	start := time.Now()

	var summary *models.OperationSummary
	var err error
	if jsonOutput {
		summary, err = op()
	} else {
		ui := progress.NewBatchUI()
		stop := ui.Follow(app.bus)
		log := GetLogger()
		if ui.IsTerminal() {
			log.SetOutput(ui.Writer())
		}

		summary, err = op()

		// Bars settle before the summary is printed below them
		stop()
		ui.Finish()
		ui.Wait()
		if ui.IsTerminal() {
			log.SetOutput(os.Stdout)
		}
	}
	if err != nil {
		if errors.Is(err, services.ErrNoDestination) {
			return fmt.Errorf("%w: pass --to or set paths.pull_folder", err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		if err := printJSON(out, summary); err != nil {
			return err
		}
	} else {
		printSummary(out, summary, time.Since(start))
	}

	if summary.Outcome != models.OutcomeFull {
		return errors.New(summary.Headline())
	}
	return nil
}
