package service

import (
	"context"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/storage"
)

type ThemeRequest struct {
	Theme string `json:"theme" validate:"omitempty,oneof=light dark"`
}

// ThemeService reads and flips the persisted colour theme of each client.
// Storage failures never surface to the page; the dark default is used
// instead.
type ThemeService struct {
	store  storage.PreferenceStore
	logger internal.Logger
}

func NewThemeService(store storage.PreferenceStore, logger internal.Logger) *ThemeService {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &ThemeService{store: store, logger: logger}
}

// Theme returns "light" only when that is what the client has stored.
func (t *ThemeService) Theme(ctx context.Context, client string) string {
	v, ok, err := t.store.Get(ctx, internal.PreferenceKey(internal.ThemeKey, client))
	if err != nil {
		t.logger.Errorf("Error reading from storage: %v", err)
		return internal.ThemeDark
	}
	if ok && v == internal.ThemeLight {
		return internal.ThemeLight
	}
	return internal.ThemeDark
}

// ToggleTheme flips the theme and persists it. saved is false when the store
// rejected the write; the returned theme is the one now in effect.
func (t *ThemeService) ToggleTheme(ctx context.Context, client string) (theme string, saved bool) {
	next := internal.ThemeLight
	if t.Theme(ctx, client) == internal.ThemeLight {
		next = internal.ThemeDark
	}
	return t.SetTheme(ctx, client, next)
}

// SetTheme stores an explicit choice. Anything but "light" is stored as dark.
func (t *ThemeService) SetTheme(ctx context.Context, client, theme string) (string, bool) {
	if theme != internal.ThemeLight {
		theme = internal.ThemeDark
	}
	if err := t.store.Set(ctx, internal.PreferenceKey(internal.ThemeKey, client), theme); err != nil {
		t.logger.Errorf("Error saving to storage: %v", err)
		return t.Theme(ctx, client), false
	}
	return theme, true
}
