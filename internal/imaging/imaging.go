// Package imaging normalises uploaded photos of found items, lost items and
// proof of ownership before they are stored.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"

	"github.com/erazemk/lostfound/internal/model"
)

const (
	// MaxUploadBytes bounds how much of an upload is read.
	MaxUploadBytes = 8 << 20

	// MaxDimension is the longest stored edge in pixels.
	MaxDimension = 1280

	// JPEGQuality is used for every stored photo.
	JPEGQuality = 82
)

// Photo is a processed image ready for storage.
type Photo struct {
	Data []byte
	MIME string
}

var accepted = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Process checks that r holds a JPEG or PNG by sniffing its bytes, shrinks it
// to fit MaxDimension and re-encodes it as JPEG. Rejected uploads are reported
// as model.ErrInvalidInput.
func Process(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, model.Invalidf("image larger than %d bytes", MaxUploadBytes)
	}

	if detected := http.DetectContentType(data); !accepted[detected] {
		return nil, model.Invalidf("unsupported image format %s, only JPEG and PNG are accepted", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, model.Invalidf("decoding image: %v", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fit(img, MaxDimension), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Photo{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// fit scales img down so its longest edge is at most limit, keeping the
// aspect ratio. Smaller images are returned unchanged.
func fit(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return img
	}

	scale := float64(limit) / float64(max(w, h))
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
