package capture

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// ImageSource plays a still PNG or JPEG as the local "camera": the file
// is decoded once at Init, scaled to the capture size, and served as
// every frame. Useful for machines without a camera and for demos.
type ImageSource struct {
	path string
	box  Mailbox
}

// NewImageSource creates a source backed by the image at path.
func NewImageSource(path string) *ImageSource {
	return &ImageSource{path: path}
}

func (s *ImageSource) Init(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("capture: invalid image source size %dx%d", w, h)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("capture: open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("capture: decode %s: %w", s.path, err)
	}

	// Scale to the capture size, then swizzle RGBA to BGRA
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i] = scaled.Pix[i+2]   // B
		pix[i+1] = scaled.Pix[i+1] // G
		pix[i+2] = scaled.Pix[i]   // R
		pix[i+3] = 0xff
	}

	s.box.Publish(w, h, pix)
	return nil
}

func (s *ImageSource) Start() error { return nil }

func (s *ImageSource) Frame(dst *Frame) bool {
	return s.box.Take(dst)
}

func (s *ImageSource) Stop() {}
