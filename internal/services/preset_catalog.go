package services

// DeviceCategory buckets wallpaper presets by target hardware.
type DeviceCategory string

const (
	DevicePhone     DeviceCategory = "phone"
	DeviceDesktop   DeviceCategory = "desktop"
	DeviceCooler    DeviceCategory = "cooler"
	DeviceUltrawide DeviceCategory = "ultrawide"
)

// WallpaperPreset is a device-specific output size.
type WallpaperPreset struct {
	ID          string         `json:"id"`
	Category    DeviceCategory `json:"category"`
	Label       string         `json:"label"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Description string         `json:"description"`
}

// WallpaperPresetByID looks a preset up in the catalog.
func WallpaperPresetByID(id string) (WallpaperPreset, bool) {
	for _, p := range WallpaperPresets {
		if p.ID == id {
			return p, true
		}
	}
	return WallpaperPreset{}, false
}

var WallpaperPresets = []WallpaperPreset{
	// Phones
	{ID: "iphone-15-pro-max", Category: DevicePhone, Label: "iPhone 15 Pro Max", Width: 1290, Height: 2796, Description: "1290 x 2796"},
	{ID: "iphone-15", Category: DevicePhone, Label: "iPhone 15 / 14", Width: 1179, Height: 2556, Description: "1179 x 2556"},
	{ID: "android-fhd", Category: DevicePhone, Label: "Android FHD+", Width: 1080, Height: 1920, Description: "1080 x 1920"},
	{ID: "android-2k", Category: DevicePhone, Label: "Android 2K", Width: 1440, Height: 3200, Description: "1440 x 3200"},

	// Desktops
	{ID: "desktop-1080p", Category: DeviceDesktop, Label: "1080p", Width: 1920, Height: 1080, Description: "1920 x 1080"},
	{ID: "desktop-2k", Category: DeviceDesktop, Label: "2K", Width: 2560, Height: 1440, Description: "2560 x 1440"},
	{ID: "desktop-4k", Category: DeviceDesktop, Label: "4K", Width: 3840, Height: 2160, Description: "3840 x 2160"},

	// AIO cooler LCDs
	{ID: "corsair-lcd", Category: DeviceCooler, Label: "CORSAIR iCUE LCD", Width: 480, Height: 480, Description: "480 x 480"},
	{ID: "nzxt-kraken-lcd", Category: DeviceCooler, Label: "NZXT Kraken LCD", Width: 640, Height: 640, Description: "640 x 640"},

	// Ultrawide monitors
	{ID: "ultrawide-1080", Category: DeviceUltrawide, Label: "21:9 1080p", Width: 2560, Height: 1080, Description: "2560 x 1080"},
	{ID: "ultrawide-1440", Category: DeviceUltrawide, Label: "21:9 1440p", Width: 3440, Height: 1440, Description: "3440 x 1440"},
	{ID: "superwide-1440", Category: DeviceUltrawide, Label: "32:9 Super Ultrawide", Width: 5120, Height: 1440, Description: "5120 x 1440"},
}
