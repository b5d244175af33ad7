package document

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/certgen/internal/domain"
)

// writePNG сохраняет залитое цветом изображение для использования в шаблоне
func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

const testTemplate = `
width: 200
height: 100
background: bg.png
layers:
  - name: logo
    kind: image
    path: logo.png
    x: 4
    y: 4
  - name: __КУРС
    x: 100
    y: 40
    size: 20
    color: "#000000"
    align: center
  - name: __ФИО32
    x: 100
    y: 80
    size: 24
    color: "#cc0000ff"
    align: center
    visible: false
`

func openTestTemplate(t *testing.T) *Document {
	t.Helper()

	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "bg.png"), 50, 25, color.White)
	writePNG(t, filepath.Join(dir, "logo.png"), 8, 8, color.RGBA{0, 0, 255, 255})
	path := filepath.Join(dir, "template.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testTemplate), 0o644))

	doc, err := Open(path)
	require.NoError(t, err)
	return doc
}

func TestOpen_Layers(t *testing.T) {
	doc := openTestTemplate(t)

	assert.Equal(t, image.Rect(0, 0, 200, 100), doc.Bounds())
	require.Len(t, doc.ArtLayers(), 3)

	course, err := doc.GetByName("__КУРС")
	require.NoError(t, err)
	assert.Equal(t, TextLayer, course.Kind)
	assert.True(t, course.Visible)
	assert.Equal(t, AlignCenter, course.TextItem.Align)

	fio, err := doc.GetByName("__ФИО32")
	require.NoError(t, err)
	assert.False(t, fio.Visible)
	assert.Equal(t, color.NRGBA{R: 0xcc, A: 0xff}, fio.TextItem.Color)

	_, err = doc.GetByName("__ФИО99")
	assert.ErrorIs(t, err, domain.ErrLayerNotFound)
}

func TestArtLayer_SetText(t *testing.T) {
	doc := openTestTemplate(t)

	logo, err := doc.GetByName("logo")
	require.NoError(t, err)
	assert.ErrorIs(t, logo.SetText("x"), domain.ErrNotTextLayer)

	course, err := doc.GetByName("__КУРС")
	require.NoError(t, err)
	require.NoError(t, course.SetText("3"))
	assert.Equal(t, "3", course.TextItem.Contents)
}

func TestRender_VisibilityChangesPixels(t *testing.T) {
	doc := openTestTemplate(t)

	fio, err := doc.GetByName("__ФИО32")
	require.NoError(t, err)
	require.NoError(t, fio.SetText("Иванов Иван"))

	hidden, err := doc.Render()
	require.NoError(t, err)

	fio.Visible = true
	shown, err := doc.Render()
	require.NoError(t, err)

	// Фон растянут на весь холст, логотип нарисован в углу
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, hidden.RGBAAt(150, 10))
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, hidden.RGBAAt(6, 6))

	assert.Equal(t, 0, countRed(hidden))
	assert.Greater(t, countRed(shown), 0)
}

func TestSaveAs_WritesPNGCopy(t *testing.T) {
	doc := openTestTemplate(t)
	course, err := doc.GetByName("__КУРС")
	require.NoError(t, err)
	require.NoError(t, course.SetText("1 курс"))

	out := filepath.Join(t.TempDir(), "1к_005гр_Иванов.png")
	require.NoError(t, doc.SaveAs(out, PNGSaveOptions{Compression: png.BestSpeed}))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())

	// Сохранение копии не меняет документ
	assert.Equal(t, "1 курс", course.TextItem.Contents)
	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestNew_InMemory(t *testing.T) {
	doc := New(64, 32)
	doc.AddLayer(&ArtLayer{
		Name:    "title",
		Kind:    TextLayer,
		Visible: true,
		TextItem: &TextItem{
			Contents: "Ёж",
			X:        2,
			Y:        24,
			Size:     20,
			Color:    color.RGBA{255, 0, 0, 255},
		},
	})

	img, err := doc.Render()
	require.NoError(t, err)
	assert.Greater(t, countRed(img), 0)
}

func TestTemplate_Errors(t *testing.T) {
	_, err := (&Template{}).Build(t.TempDir())
	assert.Error(t, err, "size is required without background")

	_, err = (&Template{Width: 10, Height: 10, Layers: []LayerTemplate{{Kind: TextLayer}}}).Build(t.TempDir())
	assert.Error(t, err, "layer name is required")

	_, err = (&Template{Width: 10, Height: 10, Layers: []LayerTemplate{{Name: "a", Kind: "shape"}}}).Build(t.TempDir())
	assert.Error(t, err)

	_, err = (&Template{Width: 10, Height: 10, Layers: []LayerTemplate{{Name: "a", Align: "justify"}}}).Build(t.TempDir())
	assert.Error(t, err)

	_, err = Open(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#102030")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, c)

	c, err = ParseHexColor("10203040")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}, c)

	_, err = ParseHexColor("#12")
	assert.Error(t, err)
	_, err = ParseHexColor("#zzzzzz")
	assert.Error(t, err)
}

// countRed считает пиксели, в которых красный заметно преобладает
func countRed(img *image.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c.R > 128 && c.G < 100 && c.B < 100 {
				n++
			}
		}
	}
	return n
}
