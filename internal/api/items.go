package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/lifecycle"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// ItemsHandler handles found-item endpoints.
type ItemsHandler struct {
	DB    *sql.DB
	Items *lifecycle.Engine
}

type itemRequest struct {
	Finder          string     `json:"finder"`
	FinderType      string     `json:"finder_type"`
	Item            string     `json:"item"`
	ItemType        string     `json:"item_type"`
	Description     string     `json:"description"`
	ImageURL        string     `json:"image_url"`
	FinderContact   string     `json:"finder_contact"`
	DateFound       model.Date `json:"date_found"`
	GeneralLocation string     `json:"general_location"`
	FoundLocation   string     `json:"found_location"`
	TimeReturned    string     `json:"time_returned"`
	Owner           string     `json:"owner"`
	OwnerCollege    string     `json:"owner_college"`
	OwnerContact    string     `json:"owner_contact"`
	OwnerImage      string     `json:"owner_image"`
	DateClaimed     string     `json:"date_claimed"`
	TimeClaimed     string     `json:"time_claimed"`
	Status          string     `json:"status"`
	FoundationID    *int64     `json:"foundation_id"`
	PostID          string     `json:"post_id"`
	Duration        string     `json:"duration"`
}

func (req *itemRequest) toItem() *model.Item {
	return &model.Item{
		Finder:          req.Finder,
		FinderType:      req.FinderType,
		Item:            req.Item,
		ItemType:        req.ItemType,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		FinderContact:   req.FinderContact,
		DateFound:       req.DateFound,
		GeneralLocation: req.GeneralLocation,
		FoundLocation:   req.FoundLocation,
		TimeReturned:    req.TimeReturned,
		Owner:           req.Owner,
		OwnerCollege:    req.OwnerCollege,
		OwnerContact:    req.OwnerContact,
		OwnerImage:      req.OwnerImage,
		DateClaimed:     req.DateClaimed,
		TimeClaimed:     req.TimeClaimed,
		Status:          model.ItemStatus(req.Status),
		FoundationID:    req.FoundationID,
		PostID:          req.PostID,
		Duration:        req.Duration,
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

// decodeBody decodes a JSON body, reporting bad field values such as
// malformed dates with their own message.
func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := decodeJSON(r, target); err != nil {
		if isInvalidInput(err) {
			jsonError(w, http.StatusBadRequest, err.Error())
		} else {
			jsonError(w, http.StatusBadRequest, "invalid request body")
		}
		return false
	}
	return true
}

// List handles GET /api/items. Unclaimed items are reconciled first.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	var status model.ItemStatus
	if q := r.URL.Query().Get("status"); q != "" {
		st, err := model.ParseItemStatus(q)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = st
	}

	items, err := h.Items.ListItems(r.Context(), status)
	if err != nil {
		serviceError(w, err, "list items")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(items))
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Item == "" {
		jsonError(w, http.StatusBadRequest, "item required")
		return
	}

	item, err := h.Items.CreateItem(r.Context(), req.toItem())
	if err != nil {
		serviceError(w, err, "create item")
		return
	}

	slog.Info("item reported", "user", GetClaims(r.Context()).Email, "item", item.ID)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Items.GetItem(r.Context(), id)
	if err != nil {
		serviceError(w, err, "get item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// History handles GET /api/items/{id}/history.
func (h *ItemsHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	history, err := h.Items.History(r.Context(), id)
	if err != nil {
		serviceError(w, err, "get item history")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(history))
}

// Update handles PUT /api/items/{id}. Omitting status keeps the current one.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req itemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Item == "" {
		jsonError(w, http.StatusBadRequest, "item required")
		return
	}

	current, err := h.Items.GetItem(r.Context(), id)
	if err != nil {
		serviceError(w, err, "update item")
		return
	}

	in := req.toItem()
	in.ID = id
	if in.Status == "" {
		in.Status = current.Status
		if in.FoundationID == nil {
			in.FoundationID = current.FoundationID
		}
	}

	item, err := h.Items.UpdateItem(r.Context(), in)
	if err != nil {
		serviceError(w, err, "update item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// SetStatus handles PUT /api/items/{id}/status.
func (h *ItemsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.Items.SetItemStatus(r.Context(), id, req.Status)
	if err != nil {
		serviceError(w, err, "set item status")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.Items.DeleteItem(r.Context(), id); err != nil {
		serviceError(w, err, "delete item")
		return
	}

	slog.Info("item deleted", "user", GetClaims(r.Context()).Email, "item", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// Reconcile handles POST /api/items/reconcile.
func (h *ItemsHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	res, err := h.Items.Reconcile(r.Context())
	if err != nil {
		serviceError(w, err, "reconcile items")
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	uploadImage(w, r, "item", func(id int64, p *imaging.Photo) error {
		return store.SetItemImage(r.Context(), h.DB, id, p.Data, p.MIME)
	})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	serveImage(w, r, func(id int64) ([]byte, string, error) {
		return store.GetItemImage(r.Context(), h.DB, id)
	})
}
