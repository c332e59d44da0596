// Package mirror copies item changes to external systems (a shared
// spreadsheet, a Kafka topic) without coupling them to the primary write.
//
// Writers call Outbox.Publish after their own write has committed. The
// Dispatcher later delivers stored events through a Sink and retries failed
// deliveries up to a limit. A mirror failure never undoes an entity write.
package mirror

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/erazemk/lostfound/internal/model"
)

// Kind names what happened to the mirrored entity.
type Kind string

// Event kinds.
const (
	ItemCreated Kind = "item.created"
	ItemUpdated Kind = "item.updated"
	ItemDeleted Kind = "item.deleted"
)

// Event is one change to deliver.
type Event struct {
	ID     string `json:"id"`
	Kind   Kind   `json:"kind"`
	ItemID int64  `json:"item_id"`
	// Key addresses the row in the spreadsheet, which is keyed by finder.
	Key string `json:"key"`
	Row Row    `json:"row"`
}

// Row is the spreadsheet projection of an item. Column names follow the
// sheet's header row.
type Row struct {
	Finder          string `json:"FINDER"`
	FinderType      string `json:"FINDER_TYPE"`
	Item            string `json:"ITEM"`
	ItemType        string `json:"ITEM_TYPE"`
	Description     string `json:"DESCRIPTION"`
	ImageURL        string `json:"IMAGE_URL"`
	FinderContact   string `json:"CONTACT_OF_THE_FINDER"`
	DateFound       string `json:"DATE_FOUND"`
	GeneralLocation string `json:"GENERAL_LOCATION"`
	FoundLocation   string `json:"FOUND_LOCATION"`
	TimeReturned    string `json:"TIME_RETURNED"`
	Owner           string `json:"OWNER"`
	OwnerCollege    string `json:"OWNER_COLLEGE"`
	OwnerContact    string `json:"OWNER_CONTACT"`
	OwnerImage      string `json:"OWNER_IMAGE"`
	DateClaimed     string `json:"DATE_CLAIMED"`
	TimeClaimed     string `json:"TIME_CLAIMED"`
	Status          string `json:"STATUS"`
	PostURL         string `json:"POST_ID"`
	Foundation      string `json:"foundation_id"`
	Duration        string `json:"DURATION"`
}

// postURLPrefix turns a stored post ID into the link shown in the sheet.
const postURLPrefix = "www.facebook.com/"

// RowFor renders item as a spreadsheet row. The foundation column carries the
// foundation's name, never its ID.
func RowFor(item *model.Item) Row {
	row := Row{
		Finder:          item.Finder,
		FinderType:      item.FinderType,
		Item:            item.Item,
		ItemType:        item.ItemType,
		Description:     item.Description,
		ImageURL:        item.ImageURL,
		FinderContact:   item.FinderContact,
		DateFound:       item.DateFound.String(),
		GeneralLocation: item.GeneralLocation,
		FoundLocation:   item.FoundLocation,
		TimeReturned:    item.TimeReturned,
		Owner:           item.Owner,
		OwnerCollege:    item.OwnerCollege,
		OwnerContact:    item.OwnerContact,
		OwnerImage:      item.OwnerImage,
		DateClaimed:     item.DateClaimed,
		TimeClaimed:     item.TimeClaimed,
		Status:          string(item.Status),
		Foundation:      item.FoundationName,
		Duration:        item.Duration,
	}
	if item.PostID != "" {
		row.PostURL = postURLPrefix + item.PostID
	}
	return row
}

// NewItemEvent builds an event for item with a fresh event ID.
func NewItemEvent(kind Kind, item *model.Item) Event {
	key := item.Finder
	if key == "" {
		key = strconv.FormatInt(item.ID, 10)
	}
	return Event{
		ID:     uuid.NewString(),
		Kind:   kind,
		ItemID: item.ID,
		Key:    key,
		Row:    RowFor(item),
	}
}
