package models

// DirectoryEntry is one file-system object as seen through a listing
type DirectoryEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	IsDirectory bool   `json:"isDirectory"`
	Size        int64  `json:"size"` // 0 for directories until a background size query completes
	IsSymlink   bool   `json:"isSymlink"`
}

// SelectedItem is a DirectoryEntry projected into the pending-transfer set.
// Selections are keyed by Path.
type SelectedItem struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	IsDirectory bool   `json:"isDirectory"`
	Size        int64  `json:"size"`
}

// Selected projects an entry into a SelectedItem.
func (e DirectoryEntry) Selected() SelectedItem {
	return SelectedItem{
		Path:        e.Path,
		Name:        e.Name,
		IsDirectory: e.IsDirectory,
		Size:        e.Size,
	}
}

// Device is one row of `adb devices`
type Device struct {
	Serial string `json:"serial"`
	State  string `json:"state"` // "device", "offline", "unauthorized", ...
}

// Online reports whether the device accepts commands.
func (d Device) Online() bool {
	return d.State == DeviceStateOnline
}

// DeviceStateOnline is the adb state of an authorized, connected device.
const DeviceStateOnline = "device"
