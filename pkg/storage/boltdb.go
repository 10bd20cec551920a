package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/lookout/pkg/types"
)

var (
	// Bucket names
	bucketSettings   = []byte("settings")
	bucketCategories = []byte("categories")
	bucketLinks      = []byte("links")
	bucketWidgets    = []byte("widgets")

	keySettings = []byte("settings")
)

// openTimeout bounds the wait for the database file lock held by another process
const openTimeout = 2 * time.Second

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store in dataDir, seeding default
// settings on first open
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "lookout.db")

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketSettings,
			bucketCategories,
			bucketLinks,
			bucketWidgets,
		}

		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		if tx.Bucket(bucketSettings).Get(keySettings) == nil {
			settings := DefaultSettings()
			return putSettings(tx, &settings)
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Settings operations
func (s *BoltStore) GetSettings() (*types.Settings, error) {
	var settings *types.Settings
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		settings, err = getSettings(tx)
		return err
	})
	return settings, err
}

// UpdateSettings merges patch into the stored settings
func (s *BoltStore) UpdateSettings(patch Patch) (*types.Settings, error) {
	var updated types.Settings
	err := s.db.Update(func(tx *bolt.Tx) error {
		current, err := getSettings(tx)
		if err != nil {
			return err
		}
		if err := applyPatch(current, patch, &updated); err != nil {
			return err
		}
		return putSettings(tx, &updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Category operations
func (s *BoltStore) ListCategories() ([]*types.Category, error) {
	var categories []*types.Category
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		categories, err = list[types.Category](tx, bucketCategories)
		return err
	})
	sortCategories(categories)
	return categories, err
}

func (s *BoltStore) GetCategory(id string) (*types.Category, error) {
	var category *types.Category
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		category, err = get[types.Category](tx, bucketCategories, "category", id)
		return err
	})
	return category, err
}

// CreateCategory assigns an id and order when missing and stores category
func (s *BoltStore) CreateCategory(category *types.Category) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if category.ID == "" {
			category.ID = uuid.New().String()
			category.Order = tx.Bucket(bucketCategories).Stats().KeyN
		}
		return put(tx, bucketCategories, category.ID, category)
	})
}

func (s *BoltStore) UpdateCategory(id string, patch Patch) (*types.Category, error) {
	var updated types.Category
	err := s.db.Update(func(tx *bolt.Tx) error {
		current, err := get[types.Category](tx, bucketCategories, "category", id)
		if err != nil {
			return err
		}
		if err := applyPatch(current, patch, &updated); err != nil {
			return err
		}
		updated.ID = id
		if err := validateCategory(&updated); err != nil {
			return err
		}
		return put(tx, bucketCategories, id, &updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCategory removes a category together with its links. Child
// categories are moved to the top level.
func (s *BoltStore) DeleteCategory(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if _, err := get[types.Category](tx, bucketCategories, "category", id); err != nil {
			return err
		}
		if err := tx.Bucket(bucketCategories).Delete([]byte(id)); err != nil {
			return err
		}

		categories, err := list[types.Category](tx, bucketCategories)
		if err != nil {
			return err
		}
		for _, child := range categories {
			if child.ParentID != id {
				continue
			}
			child.ParentID = ""
			if err := put(tx, bucketCategories, child.ID, child); err != nil {
				return err
			}
		}

		links, err := list[types.Link](tx, bucketLinks)
		if err != nil {
			return err
		}
		for _, link := range links {
			if link.CategoryID != id {
				continue
			}
			if err := tx.Bucket(bucketLinks).Delete([]byte(link.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReorderCategories sets the order of the listed categories to their index.
// Unknown ids are ignored.
func (s *BoltStore) ReorderCategories(ids []string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for i, id := range ids {
			category, err := get[types.Category](tx, bucketCategories, "category", id)
			if err != nil {
				continue
			}
			category.Order = i
			if err := put(tx, bucketCategories, id, category); err != nil {
				return err
			}
		}
		return nil
	})
}

// Link operations
func (s *BoltStore) ListLinks() ([]*types.Link, error) {
	var links []*types.Link
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		links, err = list[types.Link](tx, bucketLinks)
		return err
	})
	sortLinks(links)
	return links, err
}

func (s *BoltStore) GetLink(id string) (*types.Link, error) {
	var link *types.Link
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		link, err = get[types.Link](tx, bucketLinks, "link", id)
		return err
	})
	return link, err
}

// CreateLink assigns an id and an order within its category when missing
func (s *BoltStore) CreateLink(link *types.Link) error {
	if err := validateLink(link); err != nil {
		return err
	}
	if link.Tags == nil {
		link.Tags = []string{}
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if link.ID == "" {
			link.ID = uuid.New().String()

			links, err := list[types.Link](tx, bucketLinks)
			if err != nil {
				return err
			}
			link.Order = 0
			for _, other := range links {
				if other.CategoryID == link.CategoryID {
					link.Order++
				}
			}
		}
		return put(tx, bucketLinks, link.ID, link)
	})
}

func (s *BoltStore) UpdateLink(id string, patch Patch) (*types.Link, error) {
	var updated types.Link
	err := s.db.Update(func(tx *bolt.Tx) error {
		current, err := get[types.Link](tx, bucketLinks, "link", id)
		if err != nil {
			return err
		}
		if err := applyPatch(current, patch, &updated); err != nil {
			return err
		}
		updated.ID = id
		if err := validateLink(&updated); err != nil {
			return err
		}
		return put(tx, bucketLinks, id, &updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *BoltStore) DeleteLink(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if _, err := get[types.Link](tx, bucketLinks, "link", id); err != nil {
			return err
		}
		return tx.Bucket(bucketLinks).Delete([]byte(id))
	})
}

// ReorderLinks sets the order of the listed links of a category to their
// index. Unknown ids and links of other categories are ignored.
func (s *BoltStore) ReorderLinks(categoryID string, ids []string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for i, id := range ids {
			link, err := get[types.Link](tx, bucketLinks, "link", id)
			if err != nil {
				continue
			}
			if categoryID != "" && link.CategoryID != categoryID {
				continue
			}
			link.Order = i
			if err := put(tx, bucketLinks, id, link); err != nil {
				return err
			}
		}
		return nil
	})
}

// Widget operations
func (s *BoltStore) ListWidgets() ([]*types.Widget, error) {
	var widgets []*types.Widget
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		widgets, err = list[types.Widget](tx, bucketWidgets)
		return err
	})
	sortWidgets(widgets)
	return widgets, err
}

func (s *BoltStore) GetWidget(id string) (*types.Widget, error) {
	var widget *types.Widget
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		widget, err = get[types.Widget](tx, bucketWidgets, "widget", id)
		return err
	})
	return widget, err
}

// CreateWidget assigns ids to the widget and its servers when missing
func (s *BoltStore) CreateWidget(widget *types.Widget) error {
	if err := validateWidget(widget); err != nil {
		return err
	}
	assignServerIDs(widget)
	return s.db.Update(func(tx *bolt.Tx) error {
		if widget.ID == "" {
			widget.ID = uuid.New().String()
			widget.Order = tx.Bucket(bucketWidgets).Stats().KeyN
		}
		return put(tx, bucketWidgets, widget.ID, widget)
	})
}

func (s *BoltStore) UpdateWidget(id string, patch Patch) (*types.Widget, error) {
	var updated types.Widget
	err := s.db.Update(func(tx *bolt.Tx) error {
		current, err := get[types.Widget](tx, bucketWidgets, "widget", id)
		if err != nil {
			return err
		}
		if err := applyPatch(current, patch, &updated); err != nil {
			return err
		}
		updated.ID = id
		if err := validateWidget(&updated); err != nil {
			return err
		}
		assignServerIDs(&updated)
		return put(tx, bucketWidgets, id, &updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *BoltStore) DeleteWidget(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if _, err := get[types.Widget](tx, bucketWidgets, "widget", id); err != nil {
			return err
		}
		return tx.Bucket(bucketWidgets).Delete([]byte(id))
	})
}

// ToggleWidget flips the enabled flag of a widget
func (s *BoltStore) ToggleWidget(id string) (*types.Widget, error) {
	var widget *types.Widget
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		widget, err = get[types.Widget](tx, bucketWidgets, "widget", id)
		if err != nil {
			return err
		}
		widget.Enabled = !widget.Enabled
		return put(tx, bucketWidgets, id, widget)
	})
	if err != nil {
		return nil, err
	}
	return widget, nil
}

// Export returns the whole document
func (s *BoltStore) Export() (*types.Document, error) {
	doc := &types.Document{}
	err := s.db.View(func(tx *bolt.Tx) error {
		settings, err := getSettings(tx)
		if err != nil {
			return err
		}
		doc.Settings = *settings

		categories, err := list[types.Category](tx, bucketCategories)
		if err != nil {
			return err
		}
		links, err := list[types.Link](tx, bucketLinks)
		if err != nil {
			return err
		}
		widgets, err := list[types.Widget](tx, bucketWidgets)
		if err != nil {
			return err
		}

		sortCategories(categories)
		sortLinks(links)
		sortWidgets(widgets)

		doc.Categories = deref(categories)
		doc.Links = deref(links)
		doc.Widgets = deref(widgets)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Import replaces the whole document in a single transaction
func (s *BoltStore) Import(doc *types.Document) error {
	for i := range doc.Categories {
		if err := validateCategory(&doc.Categories[i]); err != nil {
			return err
		}
	}
	for i := range doc.Links {
		if err := validateLink(&doc.Links[i]); err != nil {
			return err
		}
	}
	for i := range doc.Widgets {
		if err := validateWidget(&doc.Widgets[i]); err != nil {
			return err
		}
		assignServerIDs(&doc.Widgets[i])
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCategories, bucketLinks, bucketWidgets} {
			if err := tx.DeleteBucket(bucket); err != nil {
				return fmt.Errorf("failed to clear bucket %s: %w", bucket, err)
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		if err := putSettings(tx, &doc.Settings); err != nil {
			return err
		}
		for i := range doc.Categories {
			c := &doc.Categories[i]
			if c.ID == "" {
				c.ID = uuid.New().String()
			}
			if err := put(tx, bucketCategories, c.ID, c); err != nil {
				return err
			}
		}
		for i := range doc.Links {
			l := &doc.Links[i]
			if l.ID == "" {
				l.ID = uuid.New().String()
			}
			if err := put(tx, bucketLinks, l.ID, l); err != nil {
				return err
			}
		}
		for i := range doc.Widgets {
			w := &doc.Widgets[i]
			if w.ID == "" {
				w.ID = uuid.New().String()
			}
			if err := put(tx, bucketWidgets, w.ID, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// Snapshot returns the links, widgets and monitoring settings as of a single
// read transaction
func (s *BoltStore) Snapshot(ctx context.Context) (types.MonitorSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return types.MonitorSnapshot{}, err
	}

	var snapshot types.MonitorSnapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		settings, err := getSettings(tx)
		if err != nil {
			return err
		}
		if settings.Monitoring != nil {
			snapshot.Monitoring = *settings.Monitoring
		}

		links, err := list[types.Link](tx, bucketLinks)
		if err != nil {
			return err
		}
		widgets, err := list[types.Widget](tx, bucketWidgets)
		if err != nil {
			return err
		}

		sortLinks(links)
		sortWidgets(widgets)
		snapshot.Links = deref(links)
		snapshot.Widgets = deref(widgets)
		return nil
	})
	return snapshot, err
}

func getSettings(tx *bolt.Tx) (*types.Settings, error) {
	data := tx.Bucket(bucketSettings).Get(keySettings)
	if data == nil {
		return nil, fmt.Errorf("%w: settings", ErrNotFound)
	}
	var settings types.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func putSettings(tx *bolt.Tx, settings *types.Settings) error {
	return put(tx, bucketSettings, string(keySettings), settings)
}

func put(tx *bolt.Tx, bucket []byte, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Bucket(bucket).Put([]byte(id), data)
}

func get[T any](tx *bolt.Tx, bucket []byte, kind, id string) (*T, error) {
	data := tx.Bucket(bucket).Get([]byte(id))
	if data == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func list[T any](tx *bolt.Tx, bucket []byte) ([]*T, error) {
	var out []*T
	err := tx.Bucket(bucket).ForEach(func(k, data []byte) error {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		out = append(out, &v)
		return nil
	})
	return out, err
}

func deref[T any](in []*T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, *v)
	}
	return out
}

func assignServerIDs(widget *types.Widget) {
	for i := range widget.Config.Servers {
		if widget.Config.Servers[i].ID == "" {
			widget.Config.Servers[i].ID = uuid.New().String()
		}
	}
}

func sortCategories(categories []*types.Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Order != categories[j].Order {
			return categories[i].Order < categories[j].Order
		}
		return categories[i].ID < categories[j].ID
	})
}

func sortLinks(links []*types.Link) {
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].Order != links[j].Order {
			return links[i].Order < links[j].Order
		}
		return links[i].ID < links[j].ID
	})
}

func sortWidgets(widgets []*types.Widget) {
	sort.SliceStable(widgets, func(i, j int) bool {
		if widgets[i].Order != widgets[j].Order {
			return widgets[i].Order < widgets[j].Order
		}
		return widgets[i].ID < widgets[j].ID
	})
}
