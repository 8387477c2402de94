package cli

import (
	"context"

	"github.com/freedroid/freedroid/internal/adb"
	"github.com/freedroid/freedroid/internal/config"
	"github.com/freedroid/freedroid/internal/events"
	"github.com/freedroid/freedroid/internal/notify"
	"github.com/freedroid/freedroid/internal/pathutil"
	"github.com/freedroid/freedroid/internal/preview"
	"github.com/freedroid/freedroid/internal/remotefs"
	"github.com/freedroid/freedroid/internal/services"
)

// deviceApp bundles what a device command needs: the bridge client, the
// resolved serial and the services built on them.
type deviceApp struct {
	cfg      *config.Config
	client   *adb.Client
	bus      *events.EventBus
	deviceID string
}

// newBridge locates adb and builds a client without choosing a device.
func newBridge() (*adb.Client, error) {
	cfg := GetConfig()
	path, err := adb.LocateTool(cfg.Bridge.ADBPath)
	if err != nil {
		return nil, err
	}
	GetLogger().Debug().Str("adb", path).Msg("bridge located")
	return adb.NewClient(path, cfg.CommandTimeout(), GetLogger()), nil
}

// newDeviceApp locates adb and resolves the target device from --device,
// the configured default serial, or the only connected device.
func newDeviceApp(ctx context.Context) (*deviceApp, error) {
	client, err := newBridge()
	if err != nil {
		return nil, err
	}

	cfg := GetConfig()
	preferred := deviceFlag
	if preferred == "" {
		preferred = cfg.Device.DefaultSerial
	}
	serial, err := adb.ResolveDevice(ctx, client, preferred)
	if err != nil {
		return nil, err
	}
	GetLogger().Debug().Str("device", serial).Msg("device resolved")

	return &deviceApp{
		cfg:      cfg,
		client:   client,
		bus:      events.NewEventBus(0),
		deviceID: serial,
	}, nil
}

func (a *deviceApp) browseOptions() remotefs.Options {
	return remotefs.Options{
		FollowSymlinks: a.cfg.Browse.FollowSymlinks,
		HideSystemDirs: a.cfg.Browse.HideSystemDirs,
	}
}

func (a *deviceApp) session() *services.Session {
	return services.NewSession(a.deviceID, a.cfg.Paths.StartFolder)
}

func (a *deviceApp) browse() *services.BrowseService {
	return services.NewBrowseService(a.client, a.browseOptions(), a.bus, GetLogger())
}

func (a *deviceApp) transfer() *services.TransferService {
	n := a.cfg.Notifications
	notifier := notify.NewNotifier(&notify.Config{
		Enabled:           n.Enabled,
		ShowBatchComplete: n.ShowBatchComplete,
		ShowBatchFailed:   n.ShowBatchFailed,
	}, GetLogger())

	return services.NewTransferService(a.client, a.bus, notifier, services.TransferOptions{
		PullRoot:       a.cfg.Paths.PullFolder,
		PushRoot:       a.cfg.Paths.PushFolder,
		CheckDiskSpace: a.cfg.Transfer.CheckDiskSpace,
	}, GetLogger())
}

func (a *deviceApp) preview() *preview.Service {
	return preview.New(a.client, config.PreviewDirectory(), GetLogger())
}

func (a *deviceApp) close() {
	a.bus.Close()
}

// remoteArg resolves a device path argument against the start folder.
func (a *deviceApp) remoteArg(p string) string {
	if p == "" {
		return a.cfg.Paths.StartFolder
	}
	if p[0] != '/' {
		return pathutil.JoinRemote(a.cfg.Paths.StartFolder, p)
	}
	return pathutil.CleanRemote(p)
}
