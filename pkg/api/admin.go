package api

import (
	"net/http"

	"github.com/cuemby/lookout/pkg/storage"
	"github.com/cuemby/lookout/pkg/types"
)

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Export()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch storage.Patch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := s.store.UpdateSettings(patch)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.afterConfigChange(r, "settings")
	writeJSON(w, http.StatusOK, settings)
}

// Categories

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var category types.Category
	if err := decodeJSON(r, &category); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	category.ID = ""

	if err := s.store.CreateCategory(&category); err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.afterConfigChange(r, "category created")
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var patch storage.Patch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := s.store.UpdateCategory(r.PathValue("id"), patch)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.afterConfigChange(r, "category updated")
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCategory(r.PathValue("id")); err != nil {
		s.writeStoreError(w, err)
		return
	}

	// links of the category are gone, so their targets must be too
	s.afterConfigChange(r, "category deleted")
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

type reorderRequest struct {
	CategoryID string   `json:"categoryId,omitempty"`
	IDs        []string `json:"ids"`
}

func (s *Server) handleReorderCategories(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.ReorderCategories(req.IDs); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Links

func (s *Server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	var link types.Link
	if err := decodeJSON(r, &link); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	link.ID = ""

	if err := s.store.CreateLink(&link); err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.afterConfigChange(r, "link created")
	writeJSON(w, http.StatusCreated, link)
}

func (s *Server) handleUpdateLink(w http.ResponseWriter, r *http.Request) {
	var patch storage.Patch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	link, err := s.store.UpdateLink(r.PathValue("id"), patch)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.afterConfigChange(r, "link updated")
	writeJSON(w, http.StatusOK, link)
}

func (s *Server) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteLink(r.PathValue("id")); err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.afterConfigChange(r, "link deleted")
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleReorderLinks(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.ReorderLinks(req.CategoryID, req.IDs); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Widgets

func (s *Server) handleCreateWidget(w http.ResponseWriter, r *http.Request) {
	var widget types.Widget
	if err := decodeJSON(r, &widget); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	widget.ID = ""

	if err := s.store.CreateWidget(&widget); err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.afterConfigChange(r, "widget created")
	writeJSON(w, http.StatusCreated, widget)
}

func (s *Server) handleUpdateWidget(w http.ResponseWriter, r *http.Request) {
	var patch storage.Patch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	widget, err := s.store.UpdateWidget(r.PathValue("id"), patch)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.afterConfigChange(r, "widget updated")
	writeJSON(w, http.StatusOK, widget)
}

func (s *Server) handleDeleteWidget(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteWidget(r.PathValue("id")); err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.afterConfigChange(r, "widget deleted")
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleToggleWidget(w http.ResponseWriter, r *http.Request) {
	widget, err := s.store.ToggleWidget(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.afterConfigChange(r, "widget toggled")
	writeJSON(w, http.StatusOK, widget)
}

// Export and import

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Export()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="lookout-config.json"`)
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var doc types.Document
	if err := decodeJSON(r, &doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.Import(&doc); err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.afterConfigChange(r, "document imported")
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
