// Package document реализует многослойный документ-шаблон: фон, именованные
// текстовые и графические слои и экспорт копии документа в PNG.
package document

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font/opentype"

	"github.com/aidar/certgen/internal/domain"
)

// LayerKind определяет тип слоя
type LayerKind string

// Типы слоев
const (
	TextLayer  LayerKind = "text"
	ImageLayer LayerKind = "image"
)

// Align определяет выравнивание текста относительно точки привязки
type Align string

// Варианты выравнивания
const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// TextItem содержит текст и оформление текстового слоя.
// X, Y задают точку привязки на базовой линии.
type TextItem struct {
	Contents string
	X, Y     int
	Size     float64 // пункты при 72 DPI, то есть пиксели
	Color    color.Color
	Align    Align
	Font     *opentype.Font // nil - шрифт по умолчанию
}

// ArtLayer представляет слой документа
type ArtLayer struct {
	Name     string
	Kind     LayerKind
	Visible  bool
	TextItem *TextItem // только для TextLayer

	Image image.Image // только для ImageLayer
	X, Y  int
}

// SetText записывает текст в текстовый слой
func (l *ArtLayer) SetText(contents string) error {
	if l.Kind != TextLayer || l.TextItem == nil {
		return fmt.Errorf("%w: %s", domain.ErrNotTextLayer, l.Name)
	}
	l.TextItem.Contents = contents
	return nil
}

// Document - многослойный документ фиксированного размера
type Document struct {
	width, height int
	background    image.Image
	fill          color.Color
	layers        []*ArtLayer
}

// New создает пустой документ с белым фоном
func New(width, height int) *Document {
	return &Document{
		width:  width,
		height: height,
		fill:   color.White,
	}
}

// Bounds возвращает размер холста
func (d *Document) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.width, d.height)
}

// SetBackground задает фоновое изображение. Фон растягивается на весь холст.
func (d *Document) SetBackground(img image.Image) {
	d.background = img
}

// SetFill задает цвет заливки холста под фоном
func (d *Document) SetFill(c color.Color) {
	d.fill = c
}

// AddLayer добавляет слой поверх существующих
func (d *Document) AddLayer(layer *ArtLayer) {
	d.layers = append(d.layers, layer)
}

// ArtLayers возвращает слои снизу вверх
func (d *Document) ArtLayers() []*ArtLayer {
	return d.layers
}

// GetByName возвращает первый слой с указанным именем
func (d *Document) GetByName(name string) (*ArtLayer, error) {
	for _, layer := range d.layers {
		if layer.Name == name {
			return layer, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrLayerNotFound, name)
}
