package stride

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/device"
)

// devicePresets maps the names accepted in Settings.Device onto emulation
// presets of the underlying automation library.
var devicePresets = map[string]chromedp.Device{
	"iphone 7":        device.IPhone7,
	"iphone x":        device.IPhoneX,
	"iphone xr":       device.IPhoneXR,
	"iphone se":       device.IPhoneSE,
	"ipad":            device.IPad,
	"ipad mini":       device.IPadMini,
	"ipad pro":        device.IPadPro,
	"galaxy s5":       device.GalaxyS5,
	"pixel 2":         device.Pixel2,
	"pixel 2 xl":      device.Pixel2XL,
	"kindle fire hdx": device.KindleFireHDX,
}

// Device resolves a device preset by name. Names are case-insensitive.
// The name "reset" returns the preset that restores default emulation.
func Device(name string) (chromedp.Device, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "reset" {
		return device.Reset, nil
	}
	if d, ok := devicePresets[key]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownDevice, name, strings.Join(DeviceNames(), ", "))
}

// DeviceNames returns the known device preset names, sorted.
func DeviceNames() []string {
	names := make([]string, 0, len(devicePresets))
	for name := range devicePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
