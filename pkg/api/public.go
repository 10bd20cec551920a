package api

import (
	"net/http"
	"net/url"

	"github.com/cuemby/lookout/pkg/types"
)

const faviconService = "https://www.google.com/s2/favicons"

// publicData is everything the public dashboard page renders
type publicData struct {
	Settings   types.Settings   `json:"settings"`
	Categories []types.Category `json:"categories"`
	Links      []types.Link     `json:"links"`
	Widgets    []types.Widget   `json:"widgets"`
}

func (s *Server) handlePublicData(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Export()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	settings := doc.Settings
	settings.Monitoring = nil

	widgets := make([]types.Widget, 0, len(doc.Widgets))
	for _, widget := range doc.Widgets {
		if widget.Enabled {
			widgets = append(widgets, widget)
		}
	}

	writeJSON(w, http.StatusOK, publicData{
		Settings:   settings,
		Categories: doc.Categories,
		Links:      doc.Links,
		Widgets:    widgets,
	})
}

// handleFavicon redirects to a favicon service for the hostname of ?url=
func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "URL required")
		return
	}

	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		writeError(w, http.StatusBadRequest, "Invalid URL")
		return
	}

	q := url.Values{}
	q.Set("domain", u.Hostname())
	q.Set("sz", "64")
	http.Redirect(w, r, faviconService+"?"+q.Encode(), http.StatusFound)
}
