package document

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // фон может быть в JPEG
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/font/opentype"
	"gopkg.in/yaml.v3"
)

const defaultTextSize = 48

// Template описывает документ в YAML файле
type Template struct {
	Width      int             `yaml:"width"`
	Height     int             `yaml:"height"`
	Background string          `yaml:"background"` // путь относительно файла шаблона
	Fill       string          `yaml:"fill"`
	Layers     []LayerTemplate `yaml:"layers"`
}

// LayerTemplate описывает один слой шаблона
type LayerTemplate struct {
	Name     string    `yaml:"name"`
	Kind     LayerKind `yaml:"kind"`
	Visible  *bool     `yaml:"visible"` // по умолчанию слой видим
	X        int       `yaml:"x"`
	Y        int       `yaml:"y"`
	Font     string    `yaml:"font"`
	Size     float64   `yaml:"size"`
	Color    string    `yaml:"color"`
	Align    Align     `yaml:"align"`
	Contents string    `yaml:"contents"`
	Path     string    `yaml:"path"` // изображение для ImageLayer
}

// Open загружает документ из YAML шаблона
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}

	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}

	return tmpl.Build(filepath.Dir(path))
}

// Build создает документ по описанию. Относительные пути разрешаются от baseDir.
func (t *Template) Build(baseDir string) (*Document, error) {
	var background image.Image
	if t.Background != "" {
		img, err := loadImage(resolve(baseDir, t.Background))
		if err != nil {
			return nil, fmt.Errorf("failed to load background: %w", err)
		}
		background = img
	}

	width, height := t.Width, t.Height
	if background != nil {
		size := background.Bounds().Size()
		if width == 0 {
			width = size.X
		}
		if height == 0 {
			height = size.Y
		}
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New("template size is not set and there is no background")
	}

	doc := New(width, height)
	doc.SetBackground(background)
	if t.Fill != "" {
		fill, err := ParseHexColor(t.Fill)
		if err != nil {
			return nil, fmt.Errorf("parse fill: %w", err)
		}
		doc.SetFill(fill)
	}

	fonts := make(map[string]*opentype.Font)
	for i, lt := range t.Layers {
		layer, err := lt.build(baseDir, fonts)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, lt.Name, err)
		}
		doc.AddLayer(layer)
	}

	return doc, nil
}

func (lt *LayerTemplate) build(baseDir string, fonts map[string]*opentype.Font) (*ArtLayer, error) {
	if lt.Name == "" {
		return nil, errors.New("layer name is required")
	}

	layer := &ArtLayer{
		Name:    lt.Name,
		Kind:    lt.Kind,
		Visible: lt.Visible == nil || *lt.Visible,
		X:       lt.X,
		Y:       lt.Y,
	}

	switch lt.Kind {
	case TextLayer, "":
		layer.Kind = TextLayer
		item := &TextItem{
			Contents: lt.Contents,
			X:        lt.X,
			Y:        lt.Y,
			Size:     lt.Size,
			Align:    lt.Align,
		}
		if item.Size <= 0 {
			item.Size = defaultTextSize
		}
		switch item.Align {
		case AlignLeft, AlignCenter, AlignRight:
		case "":
			item.Align = AlignLeft
		default:
			return nil, fmt.Errorf("unknown align %q", item.Align)
		}

		item.Color = color.Black
		if lt.Color != "" {
			c, err := ParseHexColor(lt.Color)
			if err != nil {
				return nil, fmt.Errorf("parse color: %w", err)
			}
			item.Color = c
		}

		if lt.Font != "" {
			fontPath := resolve(baseDir, lt.Font)
			f, ok := fonts[fontPath]
			if !ok {
				var err error
				if f, err = loadFont(fontPath); err != nil {
					return nil, err
				}
				fonts[fontPath] = f
			}
			item.Font = f
		}
		layer.TextItem = item

	case ImageLayer:
		if lt.Path == "" {
			return nil, errors.New("image layer requires path")
		}
		img, err := loadImage(resolve(baseDir, lt.Path))
		if err != nil {
			return nil, err
		}
		layer.Image = img

	default:
		return nil, fmt.Errorf("unknown layer kind %q", lt.Kind)
	}

	return layer, nil
}

// ParseHexColor разбирает цвет в формате #rrggbb или #rrggbbaa
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

func loadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	return f, nil
}
