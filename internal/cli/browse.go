package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/freedroid/freedroid/internal/preview"
	"github.com/freedroid/freedroid/internal/progress"
	"github.com/freedroid/freedroid/internal/remotefs"
	"github.com/freedroid/freedroid/internal/services"
	"github.com/freedroid/freedroid/internal/style"
	"github.com/freedroid/freedroid/internal/util/format"
	"github.com/freedroid/freedroid/internal/util/strings"
)

// newLsCmd creates the 'ls' command.
func newLsCmd() *cobra.Command {
	var sizes bool

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List a device directory",
		Long: `List a directory on the device, folders first. Relative paths are taken
from the configured start folder (/sdcard by default).

Examples:
  freedroid ls
  freedroid ls DCIM/Camera
  freedroid ls / --sizes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			app, err := newDeviceApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			dir = app.remoteArg(dir)

			browse := app.browse()
			sess := app.session()
			if _, err := browse.Navigate(ctx, sess, dir); err != nil {
				return err
			}

			if sizes {
				for _, e := range sess.Entries() {
					if e.IsDirectory {
						browse.ComputeSizeAsync(ctx, sess, e.Path)
					}
				}
				browse.Wait()
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, sess.Entries())
			}
			printEntries(out, sess.CurrentPath(), sess.Entries())
			return nil
		},
	}

	cmd.Flags().BoolVar(&sizes, "sizes", false, "Query approximate folder sizes (one du per folder)")
	return cmd
}

// newSizeCmd creates the 'size' command.
func newSizeCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "size <path>",
		Short: "Report the size of a device or local folder",
		Long: `Report the size of a folder. Device sizes come from du and are
approximate; --local walks a folder on this computer instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			out := cmd.OutOrStdout()

			if local {
				// Local scans never touch the bridge
				browse := services.NewBrowseService(nil, remotefs.DefaultOptions, nil, GetLogger())

				var reporter progress.Reporter = progress.NewNoOpProgress()
				if !jsonOutput {
					reporter = progress.NewCLIProgress()
				}
				reporter.Start(-1, "Scanning")
				stats, err := browse.LocalSize(ctx, args[0], progress.ScanCallback(reporter, "Scanning"))
				reporter.Finish()
				if err != nil {
					reporter.Error(err)
					return err
				}

				if jsonOutput {
					return printJSON(out, stats)
				}
				fmt.Fprintf(out, "%s: %s in %s\n", args[0], format.Bytes(stats.Bytes), strings.Count(stats.Files, "file"))
				if stats.SkippedDirs > 0 {
					fmt.Fprintln(out, style.WarnStyle.Render(fmt.Sprintf("%s could not be read", strings.Count(stats.SkippedDirs, "folder"))))
				}
				return nil
			}

			app, err := newDeviceApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			remotePath := app.remoteArg(args[0])
			size, err := app.browse().ComputeSize(ctx, app.deviceID, remotePath)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(out, map[string]interface{}{"path": remotePath, "size": size})
			}
			fmt.Fprintf(out, "%s: ~%s\n", remotePath, format.Bytes(size))
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Measure a folder on this computer")
	return cmd
}

// newStatCmd creates the 'stat' command.
func newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Show size and modification time of a device file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			app, err := newDeviceApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			remotePath := app.remoteArg(args[0])
			st, err := app.browse().Provider(app.deviceID).Stat(ctx, remotePath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, map[string]interface{}{
					"path":     remotePath,
					"size":     st.Size,
					"modified": st.ModTime,
				})
			}
			fmt.Fprintf(out, "Path:     %s\n", remotePath)
			fmt.Fprintf(out, "Size:     %s (%d bytes)\n", format.Bytes(st.Size), st.Size)
			fmt.Fprintf(out, "Modified: %s\n", st.ModTime.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

// newPreviewCmd creates the 'preview' command.
func newPreviewCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "preview <path>",
		Short: "Show metadata and a preview of a file",
		Long: `Show a file's metadata plus its content when it is previewable.

Text files (txt, md, json, xml, csv, log, js, py, java, html, css) under
100 KB are printed, truncated to 50,000 characters. Images (jpg, jpeg, png,
gif, webp, bmp) under 10 MB are pulled to a temporary folder and the local
path is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()

			var res *preview.Result
			if local {
				r, err := preview.Local(args[0])
				if err != nil {
					return err
				}
				res = r
			} else {
				app, err := newDeviceApp(ctx)
				if err != nil {
					return err
				}
				defer app.close()

				r, err := app.preview().Remote(ctx, app.deviceID, app.remoteArg(args[0]))
				if err != nil {
					return err
				}
				res = r
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, res)
			}

			m := res.Metadata
			fmt.Fprintln(out, style.TitleStyle.Render(m.Name))
			fmt.Fprintf(out, "Type:     %s\n", m.Type)
			fmt.Fprintf(out, "Size:     %s\n", format.Bytes(m.Size))
			fmt.Fprintf(out, "Modified: %s\n", m.Modified.Format("2006-01-02 15:04:05"))

			p := res.Preview
			switch {
			case p == nil:
				fmt.Fprintln(out, style.HelpStyle.Render("No preview available"))
			case p.Kind == preview.KindImage:
				fmt.Fprintf(out, "Image:    %s (%s)\n", p.Path, p.MIME)
			default:
				fmt.Fprintln(out)
				fmt.Fprint(out, p.Text)
				if p.Truncated {
					fmt.Fprintln(os.Stderr, style.HelpStyle.Render("\n[truncated]"))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Preview a file on this computer")
	return cmd
}
