package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/lifecycle"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// FoundationsHandler handles donation foundation endpoints.
type FoundationsHandler struct {
	DB    *sql.DB
	Items *lifecycle.Engine
}

type foundationRequest struct {
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	Link        string     `json:"link"`
	Contact     string     `json:"contact"`
	Status      string     `json:"status"`
	StartDate   model.Date `json:"start_date"`
	EndDate     model.Date `json:"end_date"`
}

func (req *foundationRequest) toFoundation() *model.Foundation {
	return &model.Foundation{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		Link:        req.Link,
		Contact:     req.Contact,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
}

// List handles GET /api/foundations.
func (h *FoundationsHandler) List(w http.ResponseWriter, r *http.Request) {
	foundations, err := store.ListFoundations(r.Context(), h.DB)
	if err != nil {
		serviceError(w, err, "list foundations")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(foundations))
}

// Create handles POST /api/foundations. Existing items are not re-matched
// until the next item listing or explicit reconciliation.
func (h *FoundationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req foundationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in := req.toFoundation()
	if err := in.Validate(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	f, err := store.CreateFoundation(r.Context(), h.DB, in)
	if err != nil {
		serviceError(w, err, "create foundation")
		return
	}
	if !f.ValidWindow() {
		slog.Warn("foundation window is inverted and will never match",
			"foundation", f.ID, "start", f.StartDate.String(), "end", f.EndDate.String())
	}

	slog.Info("foundation created", "user", GetClaims(r.Context()).Email, "foundation", f.ID)
	jsonResponse(w, http.StatusCreated, f)
}

// Get handles GET /api/foundations/{id}.
func (h *FoundationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid foundation id")
		return
	}

	f, err := store.GetFoundation(r.Context(), h.DB, id)
	if err != nil {
		serviceError(w, err, "get foundation")
		return
	}
	if f == nil {
		jsonError(w, http.StatusNotFound, "foundation not found")
		return
	}
	jsonResponse(w, http.StatusOK, f)
}

// Update handles PUT /api/foundations/{id}.
func (h *FoundationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid foundation id")
		return
	}

	var req foundationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in := req.toFoundation()
	in.ID = id
	if err := in.Validate(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.UpdateFoundation(r.Context(), h.DB, in); err != nil {
		serviceError(w, err, "update foundation")
		return
	}

	f, err := store.GetFoundation(r.Context(), h.DB, id)
	if err != nil {
		serviceError(w, err, "update foundation")
		return
	}
	jsonResponse(w, http.StatusOK, f)
}

// SetStatus handles PUT /api/foundations/{id}/status. Foundation status is
// free text (for example "open" or "closed") and does not affect matching.
func (h *FoundationsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid foundation id")
		return
	}

	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := store.SetFoundationStatus(r.Context(), h.DB, id, req.Status); err != nil {
		serviceError(w, err, "set foundation status")
		return
	}

	f, err := store.GetFoundation(r.Context(), h.DB, id)
	if err != nil {
		serviceError(w, err, "set foundation status")
		return
	}
	jsonResponse(w, http.StatusOK, f)
}

// Delete handles DELETE /api/foundations/{id}.
func (h *FoundationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid foundation id")
		return
	}

	if err := store.DeleteFoundation(r.Context(), h.DB, id); err != nil {
		serviceError(w, err, "delete foundation")
		return
	}

	slog.Info("foundation deleted", "user", GetClaims(r.Context()).Email, "foundation", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "foundation deleted"})
}

// ListItems handles GET /api/foundations/{id}/items.
func (h *FoundationsHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid foundation id")
		return
	}

	items, err := h.Items.ListFoundationItems(r.Context(), id)
	if err != nil {
		serviceError(w, err, "list foundation items")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(items))
}
