package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/retrieval"
	"github.com/erazemk/lostfound/internal/store"
)

// RetrievalsHandler handles retrieval request endpoints.
type RetrievalsHandler struct {
	DB       *sql.DB
	Requests *retrieval.Service
}

type retrievalRequest struct {
	ClaimerName      string `json:"claimer_name"`
	ClaimerCollege   string `json:"claimer_college"`
	ClaimerLevel     string `json:"claimer_level"`
	ContactNumber    string `json:"contact_number"`
	DateComplained   string `json:"date_complained"`
	TimeComplained   string `json:"time_complained"`
	ItemName         string `json:"item_name"`
	Description      string `json:"description"`
	GeneralLocation  string `json:"general_location"`
	SpecificLocation string `json:"specific_location"`
	DateLost         string `json:"date_lost"`
	TimeLost         string `json:"time_lost"`
	ItemID           int64  `json:"item_id"`
	// Status is accepted so clients sending it are not rejected, but it is
	// never stored.
	Status string `json:"status"`
}

func (h *RetrievalsHandler) loadOwned(w http.ResponseWriter, r *http.Request) *model.RetrievalRequest {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid retrieval request id")
		return nil
	}

	req, err := h.Requests.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err, "get retrieval request")
		return nil
	}
	if !canAccess(GetClaims(r.Context()), req.UserID) {
		jsonError(w, http.StatusNotFound, "retrieval request not found")
		return nil
	}
	return req
}

// List handles GET /api/retrieval-requests (admin), optionally ?status=.
func (h *RetrievalsHandler) List(w http.ResponseWriter, r *http.Request) {
	var status model.RequestStatus
	if q := r.URL.Query().Get("status"); q != "" {
		st, err := model.ParseRequestStatus(q)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = st
	}

	requests, err := store.ListRetrievalRequests(r.Context(), h.DB, status)
	if err != nil {
		serviceError(w, err, "list retrieval requests")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(requests))
}

// Mine handles GET /api/retrieval-requests/mine.
func (h *RetrievalsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	requests, err := store.ListRetrievalRequestsByUser(r.Context(), h.DB, GetClaims(r.Context()).UserID)
	if err != nil {
		serviceError(w, err, "list retrieval requests")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(requests))
}

// Create handles POST /api/retrieval-requests.
func (h *RetrievalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body retrievalRequest
	if !decodeBody(w, r, &body) {
		return
	}

	claims := GetClaims(r.Context())
	req, err := h.Requests.Create(r.Context(), &model.RetrievalRequest{
		ClaimerName:      body.ClaimerName,
		ClaimerCollege:   body.ClaimerCollege,
		ClaimerLevel:     body.ClaimerLevel,
		ContactNumber:    body.ContactNumber,
		DateComplained:   body.DateComplained,
		TimeComplained:   body.TimeComplained,
		ItemName:         body.ItemName,
		Description:      body.Description,
		GeneralLocation:  body.GeneralLocation,
		SpecificLocation: body.SpecificLocation,
		DateLost:         body.DateLost,
		TimeLost:         body.TimeLost,
		ItemID:           body.ItemID,
		UserID:           &claims.UserID,
	})
	if err != nil {
		serviceError(w, err, "create retrieval request")
		return
	}

	slog.Info("retrieval request created", "user", claims.Email, "request", req.ID, "item", req.ItemID)
	jsonResponse(w, http.StatusCreated, req)
}

// Get handles GET /api/retrieval-requests/{id}.
func (h *RetrievalsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if req := h.loadOwned(w, r); req != nil {
		jsonResponse(w, http.StatusOK, req)
	}
}

// Update handles PUT /api/retrieval-requests/{id}. Only the description,
// location and date fields can change here.
func (h *RetrievalsHandler) Update(w http.ResponseWriter, r *http.Request) {
	current := h.loadOwned(w, r)
	if current == nil {
		return
	}

	var fields model.RequestFields
	if !decodeBody(w, r, &fields) {
		return
	}

	req, err := h.Requests.UpdateFields(r.Context(), current.ID, fields)
	if err != nil {
		serviceError(w, err, "update retrieval request")
		return
	}
	jsonResponse(w, http.StatusOK, req)
}

// SetStatus handles PUT /api/retrieval-requests/{id}/status (admin).
func (h *RetrievalsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid retrieval request id")
		return
	}

	var body statusRequest
	if !decodeBody(w, r, &body) {
		return
	}

	req, err := h.Requests.Advance(r.Context(), id, body.Status)
	if err != nil {
		serviceError(w, err, "set retrieval request status")
		return
	}

	slog.Info("retrieval request status set", "user", GetClaims(r.Context()).Email,
		"request", id, "status", req.Status)
	jsonResponse(w, http.StatusOK, req)
}

// SetFoundItemStatus handles PUT /api/found-items/{id}/status (admin). It only
// touches the item; any request about it keeps its own status.
func (h *RetrievalsHandler) SetFoundItemStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var body statusRequest
	if !decodeBody(w, r, &body) {
		return
	}

	item, err := h.Requests.SetFoundItemStatus(r.Context(), id, body.Status)
	if err != nil {
		serviceError(w, err, "set item status")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/retrieval-requests/{id}.
func (h *RetrievalsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	current := h.loadOwned(w, r)
	if current == nil {
		return
	}

	if err := store.DeleteRetrievalRequest(r.Context(), h.DB, current.ID); err != nil {
		serviceError(w, err, "delete retrieval request")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "retrieval request deleted"})
}

// UploadImage handles PUT /api/retrieval-requests/{id}/image.
func (h *RetrievalsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.loadOwned(w, r) == nil {
		return
	}
	uploadImage(w, r, "retrieval request", func(id int64, p *imaging.Photo) error {
		return store.SetRetrievalRequestImage(r.Context(), h.DB, id, p.Data, p.MIME)
	})
}

// GetImage handles GET /api/retrieval-requests/{id}/image.
func (h *RetrievalsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	if h.loadOwned(w, r) == nil {
		return
	}
	serveImage(w, r, func(id int64) ([]byte, string, error) {
		return store.GetRetrievalRequestImage(r.Context(), h.DB, id)
	})
}
