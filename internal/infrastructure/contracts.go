package infrastructure

import (
	"context"

	"github.com/andreyxaxa/oral-screening/internal/entity"
)

type (
	ImageProcessor interface {
		// NormalizeJPEG decodes any supported image and re-encodes it as JPEG.
		NormalizeJPEG(ctx context.Context, data []byte) ([]byte, error)
		// DrawAnnotations burns annotation outlines and their legend labels into the image.
		DrawAnnotations(ctx context.Context, data []byte, annotations []entity.Annotation) ([]byte, error)
		// PrepareForReport returns a JPEG rendition of data together with its pixel size.
		PrepareForReport(ctx context.Context, data []byte) ([]byte, int, int, error)
	}

	ReportCompositor interface {
		Compose(ctx context.Context, doc *entity.ReportDocument) ([]byte, error)
	}

	EventsSender interface {
		SendEvents(ctx context.Context, events []*entity.OutboxEvent) error
		Close() error
	}
)
