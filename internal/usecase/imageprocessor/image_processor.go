package imageprocessor

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/andreyxaxa/oral-screening/internal/dto"
	"github.com/andreyxaxa/oral-screening/internal/infrastructure"
	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
)

// OverlayUseCase turns the admin's work on one image into the JPEG overlay artifact.
type OverlayUseCase struct {
	p infrastructure.ImageProcessor
}

func New(p infrastructure.ImageProcessor) *OverlayUseCase {
	return &OverlayUseCase{p}
}

func (uc *OverlayUseCase) Process(ctx context.Context, task dto.OverlayTask) ([]byte, error) {
	var result []byte
	var err error

	switch task.Source {
	case dto.OverlayRendered:
		var data []byte

		data, err = DecodeDataURL(task.Rendered)
		if err != nil {
			return nil, fmt.Errorf("OverlayUseCase - Process - DecodeDataURL: %w", err)
		}

		result, err = uc.p.NormalizeJPEG(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("OverlayUseCase - Process - uc.p.NormalizeJPEG: %w",
				errs.Validation("rendered overlay is not a decodable image"))
		}
	case dto.OverlayBurned:
		result, err = uc.p.DrawAnnotations(ctx, task.Original, task.Annotations)
		if err != nil {
			return nil, fmt.Errorf("OverlayUseCase - Process - uc.p.DrawAnnotations: %w",
				errs.Validation("original image cannot be decoded: %v", err))
		}
	default:
		return nil, fmt.Errorf("OverlayUseCase - Process: %w", errs.Validation("unknown overlay source %q", task.Source))
	}

	return result, nil
}

// DecodeDataURL accepts "data:image/<fmt>;base64,<payload>" or a bare base64 payload.
func DecodeDataURL(s string) ([]byte, error) {
	payload := strings.TrimSpace(s)

	if strings.HasPrefix(payload, "data:") {
		meta, data, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, errs.Validation("malformed data URL")
		}
		if !strings.HasPrefix(meta, "data:image/") || !strings.HasSuffix(meta, ";base64") {
			return nil, errs.Validation("data URL must be a base64 encoded image")
		}
		payload = data
	}

	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, errs.Validation("overlay image is not valid base64")
		}
	}

	if len(b) == 0 {
		return nil, errs.Validation("overlay image is empty")
	}

	return b, nil
}
