package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cuemby/lookout/pkg/types"
)

var (
	// ErrNotFound is returned when an entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalid is returned when an entity fails validation
	ErrInvalid = errors.New("invalid")
)

// Patch is a partial update: top-level JSON fields replace the stored ones
type Patch map[string]json.RawMessage

// Store defines the interface for dashboard document storage
type Store interface {
	// Settings
	GetSettings() (*types.Settings, error)
	UpdateSettings(patch Patch) (*types.Settings, error)

	// Categories
	ListCategories() ([]*types.Category, error)
	GetCategory(id string) (*types.Category, error)
	CreateCategory(category *types.Category) error
	UpdateCategory(id string, patch Patch) (*types.Category, error)
	DeleteCategory(id string) error
	ReorderCategories(ids []string) error

	// Links
	ListLinks() ([]*types.Link, error)
	GetLink(id string) (*types.Link, error)
	CreateLink(link *types.Link) error
	UpdateLink(id string, patch Patch) (*types.Link, error)
	DeleteLink(id string) error
	ReorderLinks(categoryID string, ids []string) error

	// Widgets
	ListWidgets() ([]*types.Widget, error)
	GetWidget(id string) (*types.Widget, error)
	CreateWidget(widget *types.Widget) error
	UpdateWidget(id string, patch Patch) (*types.Widget, error)
	DeleteWidget(id string) error
	ToggleWidget(id string) (*types.Widget, error)

	// Whole document
	Export() (*types.Document, error)
	Import(doc *types.Document) error

	// Snapshot returns the monitoring view of the document
	Snapshot(ctx context.Context) (types.MonitorSnapshot, error)

	// Utility
	Close() error
}

// DefaultSettings returns the settings seeded into a new store
func DefaultSettings() types.Settings {
	retries := types.DefaultMonitorRetries
	return types.Settings{
		SiteName:            "Dashma",
		BackgroundColor:     "#212121",
		FontFamily:          "'Courier New', Courier, monospace",
		TitleFontFamily:     "'Courier New', Courier, monospace",
		TextColor:           "#ffffff",
		AccentColor:         "#888888",
		LinkDisplayMode:     "cards",
		Columns:             3,
		LinkOpenBehavior:    "newTab",
		ShowLinkIcons:       true,
		LinkHoverEffect:     "glow",
		CategoryHoverEffect: "fade",
		NestingAnimation:    "slide",
		Monitoring: &types.MonitoringSettings{
			DefaultInterval: int(types.DefaultMonitorInterval.Seconds()),
			Timeout:         int(types.DefaultMonitorTimeout.Milliseconds()),
			Retries:         &retries,
		},
	}
}

// applyPatch overlays the top-level fields of patch onto current and decodes
// the result into out
func applyPatch(current any, patch Patch, out any) error {
	base, err := json.Marshal(current)
	if err != nil {
		return err
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &fields); err != nil {
		return err
	}
	for k, v := range patch {
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(merged, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func validateCategory(c *types.Category) error {
	if c.Name == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalid)
	}
	return nil
}

func validateLink(l *types.Link) error {
	if l.Name == "" {
		return fmt.Errorf("%w: link name is required", ErrInvalid)
	}
	if l.URL == "" {
		return fmt.Errorf("%w: link url is required", ErrInvalid)
	}
	if l.Monitoring != nil && (l.Monitoring.Port < 0 || l.Monitoring.Port > 65535) {
		return fmt.Errorf("%w: monitoring port out of range: %d", ErrInvalid, l.Monitoring.Port)
	}
	return nil
}

func validateWidget(w *types.Widget) error {
	if !w.Type.Valid() {
		return fmt.Errorf("%w: unknown widget type %q", ErrInvalid, w.Type)
	}
	for _, server := range w.Config.Servers {
		if server.Port < 0 || server.Port > 65535 {
			return fmt.Errorf("%w: server port out of range: %d", ErrInvalid, server.Port)
		}
	}
	return nil
}
