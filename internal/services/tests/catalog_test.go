package services_test

import (
	"testing"
	"wallpaper_studio_go_backend/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestEffectTemplateCatalog(t *testing.T) {
	t.Run("Lookup by id", func(t *testing.T) {
		template, ok := services.EffectTemplateByID("squish")
		assert.True(t, ok)
		assert.Equal(t, "squish", template.Template)
		assert.Equal(t, services.KindImageToVideo, template.Kind)

		_, ok = services.EffectTemplateByID("nope")
		assert.False(t, ok)
	})

	t.Run("Ids are unique and templates are well formed", func(t *testing.T) {
		seen := map[string]bool{}
		for _, template := range services.EffectTemplates {
			assert.False(t, seen[template.ID], "duplicate template id %s", template.ID)
			seen[template.ID] = true
			assert.NotEmpty(t, template.Name)
			assert.NotEmpty(t, template.Template)
			assert.NotEmpty(t, template.SupportedModels)
		}
	})
}

func TestDefaultModelFor(t *testing.T) {
	t.Run("Keyframe templates require the keyframe model", func(t *testing.T) {
		for _, template := range services.EffectTemplates {
			if template.Kind == services.KindKeyframeToVideo {
				assert.Equal(t, services.ModelKF2VPlus, services.DefaultModelFor(template))
			}
		}
	})

	t.Run("Turbo is preferred when supported", func(t *testing.T) {
		template, ok := services.EffectTemplateByID("squish")
		assert.True(t, ok)
		assert.Equal(t, services.ModelI2VTurbo, services.DefaultModelFor(template))
	})

	t.Run("Plus-only templates fall back to plus", func(t *testing.T) {
		for _, template := range services.EffectTemplates {
			if template.Kind != services.KindImageToVideo {
				continue
			}
			turbo := false
			for _, m := range template.SupportedModels {
				if m == services.ModelI2VTurbo {
					turbo = true
				}
			}
			if !turbo {
				assert.Equal(t, services.ModelI2VPlus, services.DefaultModelFor(template))
			}
		}
	})
}

func TestWallpaperPresetCatalog(t *testing.T) {
	t.Run("Lookup by id", func(t *testing.T) {
		preset, ok := services.WallpaperPresetByID("iphone-15-pro-max")
		assert.True(t, ok)
		assert.Equal(t, 1290, preset.Width)
		assert.Equal(t, 2796, preset.Height)
		assert.Equal(t, services.DevicePhone, preset.Category)

		_, ok = services.WallpaperPresetByID("nope")
		assert.False(t, ok)
	})

	t.Run("Presets carry positive dimensions and a category", func(t *testing.T) {
		seen := map[string]bool{}
		for _, preset := range services.WallpaperPresets {
			assert.False(t, seen[preset.ID], "duplicate preset id %s", preset.ID)
			seen[preset.ID] = true
			assert.Greater(t, preset.Width, 0)
			assert.Greater(t, preset.Height, 0)
			assert.NotEmpty(t, preset.Category)
		}
	})
}
