package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"
)

const (
	boxThickness = 2
	labelPadding = 4

	DataURIPrefix = "data:image/jpeg;base64,"
)

var red = color.RGBA{R: 255, A: 255}

type Options struct {
	Enabled     bool // draw the bounding box
	Label       bool // draw the demographic label next to the box
	FontSize    float64
	JPEGQuality int
}

// Box is a face rectangle in source image pixels.
type Box struct {
	Left, Top, Right, Bottom int
}

type Annotation struct {
	Box   *Box
	Label string
}

// Annotator decodes stored images, draws detection boxes and re-encodes
// them as JPEG. It is safe for concurrent use.
type Annotator struct {
	opts Options
	font *opentype.Font
}

func NewAnnotator(opts Options) (*Annotator, error) {
	if opts.JPEGQuality < 1 || opts.JPEGQuality > 100 {
		return nil, fmt.Errorf("jpeg quality %d out of range 1-100", opts.JPEGQuality)
	}

	a := &Annotator{opts: opts}
	if opts.Label {
		f, err := opentype.Parse(gomonobold.TTF)
		if err != nil {
			return nil, fmt.Errorf("failed to parse label font: %w", err)
		}
		a.font = f
	}
	return a, nil
}

// Render decodes a JPEG, PNG or WebP image from r and returns it as JPEG,
// annotated according to the options.
func (a *Annotator) Render(r io.Reader, ann Annotation) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var img image.Image = src
	if a.opts.Enabled && ann.Box != nil {
		canvas := toRGBA(src)
		drawBox(canvas, *ann.Box)
		if a.font != nil && ann.Label != "" {
			if err := a.drawLabel(canvas, *ann.Box, ann.Label); err != nil {
				return nil, err
			}
		}
		img = canvas
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: a.opts.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI wraps JPEG bytes in a data: URI.
func DataURI(jpegData []byte) string {
	return DataURIPrefix + base64.StdEncoding.EncodeToString(jpegData)
}

func toRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

// drawBox outlines box inward from its edges, clipped to the image.
func drawBox(dst *image.RGBA, box Box) {
	origin := dst.Bounds().Min
	r := image.Rect(box.Left, box.Top, box.Right, box.Bottom).Add(origin)
	fill := image.NewUniform(red)

	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+boxThickness),
		image.Rect(r.Min.X, r.Max.Y-boxThickness, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+boxThickness, r.Max.Y),
		image.Rect(r.Max.X-boxThickness, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), fill, image.Point{}, draw.Src)
	}
}

// drawLabel writes text above the box, or just below its top edge when
// there is no room above.
func (a *Annotator) drawLabel(dst *image.RGBA, box Box, text string) error {
	face, err := opentype.NewFace(a.font, &opentype.FaceOptions{
		Size:    a.opts.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("failed to create label face: %w", err)
	}
	defer face.Close()

	origin := dst.Bounds().Min
	ascent := face.Metrics().Ascent.Ceil()

	x := origin.X + box.Left
	y := origin.Y + box.Top - labelPadding
	if y-ascent < origin.Y {
		y = origin.Y + box.Top + boxThickness + ascent + labelPadding
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(red),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
	return nil
}
