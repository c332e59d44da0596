package api

import (
	"errors"
	"net/http"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/model"
)

func isInvalidInput(err error) bool {
	return errors.Is(err, model.ErrInvalidInput)
}

// uploadImage reads the "image" field of a multipart form, normalises it and
// hands it to save.
func uploadImage(w http.ResponseWriter, r *http.Request, entity string, save func(int64, *imaging.Photo) error) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid "+entity+" id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		serviceError(w, err, "process image")
		return
	}

	if err := save(id, photo); err != nil {
		serviceError(w, err, "save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// serveImage writes a stored image or 404 when there is none.
func serveImage(w http.ResponseWriter, r *http.Request, load func(int64) ([]byte, string, error)) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	data, mime, err := load(id)
	if err != nil {
		serviceError(w, err, "get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
