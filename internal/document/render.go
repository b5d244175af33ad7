package document

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	defaultFontOnce sync.Once
	defaultFont     *opentype.Font
	defaultFontErr  error
)

// DefaultFont возвращает Go Regular, в нем есть кириллица
func DefaultFont() (*opentype.Font, error) {
	defaultFontOnce.Do(func() {
		defaultFont, defaultFontErr = opentype.Parse(goregular.TTF)
	})
	return defaultFont, defaultFontErr
}

// Render растрирует текущее состояние документа: заливка, фон, видимые слои снизу вверх
func (d *Document) Render() (*image.RGBA, error) {
	dst := image.NewRGBA(d.Bounds())
	draw.Draw(dst, dst.Bounds(), image.NewUniform(d.fill), image.Point{}, draw.Src)

	if d.background != nil {
		if d.background.Bounds().Size() == dst.Bounds().Size() {
			draw.Draw(dst, dst.Bounds(), d.background, d.background.Bounds().Min, draw.Over)
		} else {
			xdraw.CatmullRom.Scale(dst, dst.Bounds(), d.background, d.background.Bounds(), draw.Over, nil)
		}
	}

	for _, layer := range d.layers {
		if !layer.Visible {
			continue
		}
		switch layer.Kind {
		case TextLayer:
			if err := drawText(dst, layer.TextItem); err != nil {
				return nil, fmt.Errorf("failed to draw layer %s: %w", layer.Name, err)
			}
		case ImageLayer:
			if layer.Image == nil {
				continue
			}
			b := layer.Image.Bounds()
			r := image.Rectangle{Min: image.Pt(layer.X, layer.Y), Max: image.Pt(layer.X+b.Dx(), layer.Y+b.Dy())}
			draw.Draw(dst, r, layer.Image, b.Min, draw.Over)
		}
	}

	return dst, nil
}

func drawText(dst draw.Image, item *TextItem) error {
	if item == nil || item.Contents == "" {
		return nil
	}

	otFont := item.Font
	if otFont == nil {
		var err error
		if otFont, err = DefaultFont(); err != nil {
			return fmt.Errorf("parse default font: %w", err)
		}
	}

	face, err := opentype.NewFace(otFont, &opentype.FaceOptions{
		Size:    item.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("create font face: %w", err)
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(item.Color),
		Face: face,
		Dot:  fixed.P(item.X, item.Y),
	}

	width := d.MeasureString(item.Contents)
	switch item.Align {
	case AlignCenter:
		d.Dot.X -= width / 2
	case AlignRight:
		d.Dot.X -= width
	}

	d.DrawString(item.Contents)
	return nil
}
