package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// ComplaintsHandler handles lost-item report endpoints.
type ComplaintsHandler struct {
	DB *sql.DB
}

// loadOwned fetches a complaint and checks the caller may see it. It writes
// the error response itself and returns nil on failure.
func (h *ComplaintsHandler) loadOwned(w http.ResponseWriter, r *http.Request) *model.Complaint {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid complaint id")
		return nil
	}

	c, err := store.GetComplaint(r.Context(), h.DB, id)
	if err != nil {
		serviceError(w, err, "get complaint")
		return nil
	}
	if c == nil || !canAccess(GetClaims(r.Context()), c.UserID) {
		jsonError(w, http.StatusNotFound, "complaint not found")
		return nil
	}
	return c
}

// List handles GET /api/complaints (admin).
func (h *ComplaintsHandler) List(w http.ResponseWriter, r *http.Request) {
	complaints, err := store.ListComplaints(r.Context(), h.DB)
	if err != nil {
		serviceError(w, err, "list complaints")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(complaints))
}

// Mine handles GET /api/complaints/mine.
func (h *ComplaintsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	complaints, err := store.ListComplaintsByUser(r.Context(), h.DB, GetClaims(r.Context()).UserID)
	if err != nil {
		serviceError(w, err, "list complaints")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(complaints))
}

// Create handles POST /api/complaints. The finder is always reset to the
// default and the complaint is attached to the caller.
func (h *ComplaintsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.Complaint
	if !decodeBody(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Complainer) == "" {
		jsonError(w, http.StatusBadRequest, "complainer required")
		return
	}

	claims := GetClaims(r.Context())
	in.UserID = &claims.UserID

	c, err := store.CreateComplaint(r.Context(), h.DB, &in)
	if err != nil {
		serviceError(w, err, "create complaint")
		return
	}

	slog.Info("complaint filed", "user", claims.Email, "complaint", c.ID)
	jsonResponse(w, http.StatusCreated, c)
}

// Get handles GET /api/complaints/{id}.
func (h *ComplaintsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if c := h.loadOwned(w, r); c != nil {
		jsonResponse(w, http.StatusOK, c)
	}
}

// Update handles PUT /api/complaints/{id}. Only admins may change the finder.
func (h *ComplaintsHandler) Update(w http.ResponseWriter, r *http.Request) {
	current := h.loadOwned(w, r)
	if current == nil {
		return
	}

	var in model.Complaint
	if !decodeBody(w, r, &in) {
		return
	}
	in.ID = current.ID
	if GetClaims(r.Context()).Role != model.RoleAdmin {
		in.Finder = current.Finder
	}

	if err := store.UpdateComplaint(r.Context(), h.DB, &in); err != nil {
		serviceError(w, err, "update complaint")
		return
	}

	c, err := store.GetComplaint(r.Context(), h.DB, current.ID)
	if err != nil {
		serviceError(w, err, "update complaint")
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// Delete handles DELETE /api/complaints/{id}.
func (h *ComplaintsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c := h.loadOwned(w, r)
	if c == nil {
		return
	}

	if err := store.DeleteComplaint(r.Context(), h.DB, c.ID); err != nil {
		serviceError(w, err, "delete complaint")
		return
	}

	slog.Info("complaint deleted", "user", GetClaims(r.Context()).Email, "complaint", c.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "complaint deleted"})
}

// UploadImage handles PUT /api/complaints/{id}/image.
func (h *ComplaintsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.loadOwned(w, r) == nil {
		return
	}
	uploadImage(w, r, "complaint", func(id int64, p *imaging.Photo) error {
		return store.SetComplaintImage(r.Context(), h.DB, id, p.Data, p.MIME)
	})
}

// GetImage handles GET /api/complaints/{id}/image.
func (h *ComplaintsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	if h.loadOwned(w, r) == nil {
		return
	}
	serveImage(w, r, func(id int64) ([]byte, string, error) {
		return store.GetComplaintImage(r.Context(), h.DB, id)
	})
}
