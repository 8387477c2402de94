package adb

import (
	"context"
	"fmt"
	"strings"

	"github.com/freedroid/freedroid/internal/models"
)

// ParseDevices reads `adb devices` output. Every serial row is returned,
// whatever its state; use OnlineSerials to keep the usable ones.
func ParseDevices(output string) []models.Device {
	var devices []models.Device
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		devices = append(devices, models.Device{Serial: fields[0], State: fields[1]})
	}
	return devices
}

// OnlineSerials returns the serials of devices in the "device" state.
func OnlineSerials(devices []models.Device) []string {
	var serials []string
	for _, d := range devices {
		if d.Online() {
			serials = append(serials, d.Serial)
		}
	}
	return serials
}

// Devices lists attached devices.
func Devices(ctx context.Context, exec Executor) ([]models.Device, error) {
	res, err := exec.Execute(ctx, "", "devices")
	if err != nil {
		return nil, err
	}
	if err := res.Err("adb devices"); err != nil {
		return nil, err
	}
	return ParseDevices(res.Stdout), nil
}

// ResolveDevice picks the device to talk to. A preferred serial must be
// online; otherwise a single online device is chosen automatically.
func ResolveDevice(ctx context.Context, exec Executor, preferred string) (string, error) {
	devices, err := Devices(ctx, exec)
	if err != nil {
		return "", err
	}
	online := OnlineSerials(devices)

	if preferred != "" {
		for _, s := range online {
			if s == preferred {
				return s, nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrDeviceUnavailable, preferred)
	}

	switch len(online) {
	case 0:
		return "", ErrDeviceUnavailable
	case 1:
		return online[0], nil
	default:
		return "", fmt.Errorf("%w (%s)", ErrMultipleDevices, strings.Join(online, ", "))
	}
}
