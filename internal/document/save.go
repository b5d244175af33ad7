package document

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSaveOptions задает параметры экспорта в PNG
type PNGSaveOptions struct {
	Compression png.CompressionLevel
}

// SaveAs сохраняет копию документа в PNG. Сам документ не меняется.
// Файл пишется во временный и переименовывается, чтобы не оставлять обрезанных PNG.
func (d *Document) SaveAs(path string, opts PNGSaveOptions) error {
	img, err := d.Render()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".certgen-*.png")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := &png.Encoder{CompressionLevel: opts.Compression}
	if err := enc.Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write PNG: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save PNG %s: %w", path, err)
	}
	return nil
}
