package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/freedroid/freedroid/internal/adb"
	"github.com/freedroid/freedroid/internal/devicewatch"
	"github.com/freedroid/freedroid/internal/events"
	"github.com/freedroid/freedroid/internal/notify"
	"github.com/freedroid/freedroid/internal/style"
)

// newDevicesCmd creates the 'devices' command.
func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List attached devices",
		Long: `List every device adb reports, including offline and unauthorized ones.
Only devices in the "device" state accept commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newBridge()
			if err != nil {
				return err
			}

			devices, err := adb.Devices(GetContext(), client)
			if err != nil {
				return fmt.Errorf("failed to list devices: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, devices)
			}
			if len(devices) == 0 {
				fmt.Fprintln(out, "No devices attached")
				return nil
			}
			for _, d := range devices {
				state := style.WarnStyle.Render(d.State)
				if d.Online() {
					state = style.SuccessStyle.Render(d.State)
				}
				fmt.Fprintf(out, "%s  %s\n", style.PadRight(d.Serial, 24), state)
			}
			return nil
		},
	}
}

// newWatchCmd creates the 'watch' command.
func newWatchCmd() *cobra.Command {
	var interval time.Duration
	var alert bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Report devices as they connect and disconnect",
		Long: `Poll adb for connected devices and print a line whenever the set of
online devices changes. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newBridge()
			if err != nil {
				return err
			}
			if interval <= 0 {
				interval = GetConfig().PollInterval()
			}

			ctx := GetContext()
			bus := events.NewEventBus(0)
			defer bus.Close()
			ch := bus.Subscribe(events.EventDeviceStatus)

			var notifier *notify.Notifier
			if alert {
				notifier = notify.NewNotifier(nil, GetLogger())
			}
			wasConnected := false

			w := devicewatch.New(client, interval, bus, GetLogger())
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			out := cmd.OutOrStdout()
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev := <-ch:
					status, ok := ev.(*events.DeviceStatusEvent)
					if !ok {
						continue
					}
					if notifier != nil && wasConnected && !status.Connected {
						notifier.Alert("Device disconnected")
					}
					wasConnected = status.Connected
					if jsonOutput {
						_ = printJSON(out, statusJSON(status))
						continue
					}
					fmt.Fprintln(out, describeStatus(status))
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Polling interval (default from configuration)")
	cmd.Flags().BoolVar(&alert, "alert", false, "Show a desktop alert when the device disconnects")
	return cmd
}

func describeStatus(s *events.DeviceStatusEvent) string {
	stamp := s.Timestamp().Format("15:04:05")
	switch {
	case s.Error != nil:
		return fmt.Sprintf("%s %s", stamp, style.ErrorStyle.Render("bridge error: "+s.Error.Error()))
	case !s.Connected:
		return fmt.Sprintf("%s %s", stamp, style.WarnStyle.Render("no device connected"))
	default:
		return fmt.Sprintf("%s %s %s", stamp, style.SuccessStyle.Render("connected:"), strings.Join(s.Serials, ", "))
	}
}

func statusJSON(s *events.DeviceStatusEvent) map[string]interface{} {
	doc := map[string]interface{}{
		"time":      s.Timestamp(),
		"serials":   s.Serials,
		"connected": s.Connected,
	}
	if s.Error != nil {
		doc["error"] = s.Error.Error()
	}
	return doc
}
