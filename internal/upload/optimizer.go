// Package upload decodes, shrinks and persists images attached to templates.
package upload

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/email-builder/internal/apperr"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxWidth = 800
	DefaultQuality  = 80
)

// Optimizer normalizes any decodable image into a JPEG no wider than
// MaxWidth. Narrower images keep their size.
type Optimizer struct {
	MaxWidth int
	Quality  int
}

func NewOptimizer() *Optimizer {
	return &Optimizer{MaxWidth: DefaultMaxWidth, Quality: DefaultQuality}
}

func (o *Optimizer) Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %v", apperr.ErrProcessing, err)
	}
	return img, nil
}

func (o *Optimizer) Resize(img image.Image) image.Image {
	if img.Bounds().Dx() <= o.MaxWidth {
		return img
	}
	return imaging.Resize(img, o.MaxWidth, 0, imaging.Lanczos)
}

// Optimize decodes r, resizes it and writes the JPEG encoding to w.
func (o *Optimizer) Optimize(r io.Reader, w io.Writer) error {
	img, err := o.Decode(r)
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, o.Resize(img), imaging.JPEG, imaging.JPEGQuality(o.Quality)); err != nil {
		return fmt.Errorf("%w: encode image: %v", apperr.ErrProcessing, err)
	}
	return nil
}
