package validate

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
)

const MaxFileSize int64 = 10 * 1024 * 1024

var (
	AllowedContentTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
	}

	AllowedExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
	}
)

// Image checks one uploaded original against the size, type and extension filters, then
// decodes its header so a renamed or truncated file never reaches storage. It returns the
// lower-cased extension.
func Image(file *multipart.FileHeader, maxSize int64) (string, error) {
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}

	if file.Size == 0 {
		return "", errs.Validation("file %s is empty", file.Filename)
	}
	if file.Size > maxSize {
		return "", errs.Validation("file %s is larger than %d bytes", file.Filename, maxSize)
	}

	contentType := strings.ToLower(file.Header.Get("Content-Type"))
	if !AllowedContentTypes[contentType] {
		return "", errs.Validation("file %s: only JPEG and PNG images are allowed", file.Filename)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !AllowedExtensions[ext] {
		return "", errs.Validation("file %s: allowed extensions are .jpg, .jpeg, .png", file.Filename)
	}

	if err := decodable(file); err != nil {
		return "", err
	}

	return ext, nil
}

func decodable(file *multipart.FileHeader) error {
	f, err := file.Open()
	if err != nil {
		return fmt.Errorf("validate - decodable - file.Open: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil || (format != "jpeg" && format != "png") {
		return errs.Validation("file %s is not a valid JPEG or PNG image", file.Filename)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return errs.Validation("file %s has no pixels", file.Filename)
	}

	return nil
}
