package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/lookout/pkg/types"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func patch(t *testing.T, fields map[string]any) Patch {
	t.Helper()
	p := make(Patch)
	for k, v := range fields {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		p[k] = data
	}
	return p
}

func TestDefaultSettingsSeeded(t *testing.T) {
	store := newTestStore(t)

	settings, err := store.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, "Dashma", settings.SiteName)
	require.NotNil(t, settings.Monitoring)
	assert.Equal(t, 60, settings.Monitoring.DefaultInterval)
	assert.Equal(t, 5000, settings.Monitoring.Timeout)
	require.NotNil(t, settings.Monitoring.Retries)
	assert.Equal(t, 2, *settings.Monitoring.Retries)
}

func TestSettingsSurviveReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewBoltStore(dir)
	require.NoError(t, err)
	_, err = store.UpdateSettings(patch(t, map[string]any{"siteName": "Home"}))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewBoltStore(dir)
	require.NoError(t, err)
	defer store.Close()

	settings, err := store.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, "Home", settings.SiteName)
}

func TestUpdateSettingsMerges(t *testing.T) {
	store := newTestStore(t)

	updated, err := store.UpdateSettings(patch(t, map[string]any{
		"siteName":           "Lab",
		"monitoringSettings": map[string]any{"defaultInterval": 30, "timeout": 1000, "retries": 0},
	}))
	require.NoError(t, err)

	assert.Equal(t, "Lab", updated.SiteName)
	assert.Equal(t, "#212121", updated.BackgroundColor, "untouched fields are kept")
	require.NotNil(t, updated.Monitoring)
	assert.Equal(t, 30, updated.Monitoring.DefaultInterval)
	require.NotNil(t, updated.Monitoring.Retries)
	assert.Equal(t, 0, *updated.Monitoring.Retries)
}

func TestUpdateSettingsInvalidJSON(t *testing.T) {
	store := newTestStore(t)

	_, err := store.UpdateSettings(Patch{"columns": json.RawMessage(`"three"`)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestCategoryLifecycle(t *testing.T) {
	store := newTestStore(t)

	first := &types.Category{Name: "Infra"}
	second := &types.Category{Name: "Media"}
	require.NoError(t, store.CreateCategory(first))
	require.NoError(t, store.CreateCategory(second))
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 0, first.Order)
	assert.Equal(t, 1, second.Order)

	updated, err := store.UpdateCategory(first.ID, patch(t, map[string]any{"name": "Infrastructure"}))
	require.NoError(t, err)
	assert.Equal(t, "Infrastructure", updated.Name)
	assert.Equal(t, first.ID, updated.ID)

	require.NoError(t, store.ReorderCategories([]string{second.ID, first.ID, "unknown"}))
	categories, err := store.ListCategories()
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, second.ID, categories[0].ID)
	assert.Equal(t, first.ID, categories[1].ID)

	err = store.CreateCategory(&types.Category{})
	assert.True(t, errors.Is(err, ErrInvalid))

	_, err = store.GetCategory("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteCategoryCascades(t *testing.T) {
	store := newTestStore(t)

	parent := &types.Category{Name: "Parent"}
	require.NoError(t, store.CreateCategory(parent))
	child := &types.Category{Name: "Child", ParentID: parent.ID}
	require.NoError(t, store.CreateCategory(child))

	inParent := &types.Link{Name: "a", URL: "http://a/", CategoryID: parent.ID}
	inChild := &types.Link{Name: "b", URL: "http://b/", CategoryID: child.ID}
	require.NoError(t, store.CreateLink(inParent))
	require.NoError(t, store.CreateLink(inChild))

	require.NoError(t, store.DeleteCategory(parent.ID))

	_, err := store.GetLink(inParent.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = store.GetLink(inChild.ID)
	assert.NoError(t, err)

	got, err := store.GetCategory(child.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ParentID)

	assert.True(t, errors.Is(store.DeleteCategory(parent.ID), ErrNotFound))
}

func TestLinkLifecycle(t *testing.T) {
	store := newTestStore(t)

	a := &types.Link{Name: "a", URL: "http://a/", CategoryID: "c1"}
	b := &types.Link{Name: "b", URL: "http://b/", CategoryID: "c1"}
	other := &types.Link{Name: "o", URL: "http://o/", CategoryID: "c2"}
	require.NoError(t, store.CreateLink(a))
	require.NoError(t, store.CreateLink(b))
	require.NoError(t, store.CreateLink(other))

	assert.Equal(t, 0, a.Order)
	assert.Equal(t, 1, b.Order)
	assert.Equal(t, 0, other.Order, "order is per category")
	assert.NotNil(t, a.Tags)

	updated, err := store.UpdateLink(a.ID, patch(t, map[string]any{
		"monitoring": map[string]any{"enabled": true, "port": 443},
	}))
	require.NoError(t, err)
	assert.Equal(t, "http://a/", updated.URL)
	require.NotNil(t, updated.Monitoring)
	assert.True(t, updated.Monitoring.Enabled)
	assert.Equal(t, 443, updated.Monitoring.Port)

	_, err = store.UpdateLink(a.ID, patch(t, map[string]any{"url": ""}))
	assert.True(t, errors.Is(err, ErrInvalid))

	require.NoError(t, store.ReorderLinks("c1", []string{b.ID, a.ID, other.ID}))
	got, err := store.GetLink(other.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Order, "links of other categories are untouched")
	got, err = store.GetLink(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Order)

	require.NoError(t, store.DeleteLink(a.ID))
	assert.True(t, errors.Is(store.DeleteLink(a.ID), ErrNotFound))

	links, err := store.ListLinks()
	require.NoError(t, err)
	assert.Len(t, links, 2)
}

func TestWidgetLifecycle(t *testing.T) {
	store := newTestStore(t)

	w := &types.Widget{
		Type:    types.WidgetTypeServerMonitor,
		Enabled: true,
		Config: types.WidgetConfig{Servers: []types.WidgetServer{
			{Name: "db", Host: "db.internal", Port: 5432},
		}},
	}
	require.NoError(t, store.CreateWidget(w))
	assert.NotEmpty(t, w.ID)
	assert.NotEmpty(t, w.Config.Servers[0].ID)

	toggled, err := store.ToggleWidget(w.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Enabled)

	updated, err := store.UpdateWidget(w.ID, patch(t, map[string]any{"title": "Servers"}))
	require.NoError(t, err)
	assert.Equal(t, "Servers", updated.Title)
	assert.False(t, updated.Enabled)
	assert.Equal(t, w.Config.Servers[0].ID, updated.Config.Servers[0].ID)

	err = store.CreateWidget(&types.Widget{Type: "calendar"})
	assert.True(t, errors.Is(err, ErrInvalid))

	require.NoError(t, store.DeleteWidget(w.ID))
	_, err = store.ToggleWidget(w.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestExportImport(t *testing.T) {
	store := newTestStore(t)

	category := &types.Category{Name: "Infra"}
	require.NoError(t, store.CreateCategory(category))
	require.NoError(t, store.CreateLink(&types.Link{Name: "nas", URL: "http://nas/", CategoryID: category.ID}))
	require.NoError(t, store.CreateWidget(&types.Widget{Type: types.WidgetTypeClock, Enabled: true}))

	doc, err := store.Export()
	require.NoError(t, err)
	assert.Len(t, doc.Categories, 1)
	assert.Len(t, doc.Links, 1)
	assert.Len(t, doc.Widgets, 1)

	other := newTestStore(t)
	require.NoError(t, other.CreateLink(&types.Link{Name: "stale", URL: "http://stale/"}))
	require.NoError(t, other.Import(doc))

	imported, err := other.Export()
	require.NoError(t, err)
	assert.Equal(t, doc, imported)
}

func TestImportRejectsInvalid(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateLink(&types.Link{Name: "keep", URL: "http://keep/"}))

	err := store.Import(&types.Document{
		Settings: DefaultSettings(),
		Widgets:  []types.Widget{{Type: "bogus"}},
	})
	assert.True(t, errors.Is(err, ErrInvalid))

	links, err := store.ListLinks()
	require.NoError(t, err)
	assert.Len(t, links, 1, "a rejected import leaves the store untouched")
}

func TestSnapshot(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CreateLink(&types.Link{
		Name:       "router",
		URL:        "http://router/",
		Monitoring: &types.LinkMonitoring{Enabled: true},
	}))
	require.NoError(t, store.CreateWidget(&types.Widget{
		Type:    types.WidgetTypeServerMonitor,
		Enabled: true,
		Config:  types.WidgetConfig{Servers: []types.WidgetServer{{Host: "10.0.0.1"}}},
	}))

	snapshot, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot.Links, 1)
	assert.Len(t, snapshot.Widgets, 1)
	assert.Equal(t, 60, snapshot.Monitoring.DefaultInterval)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Snapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
