package dto

import "github.com/andreyxaxa/oral-screening/internal/entity"

type OverlaySource string

const (
	// OverlayRendered is an image the admin client already drew, sent as a base64 data URL.
	OverlayRendered OverlaySource = "rendered"
	// OverlayBurned draws the annotations into the original server-side.
	OverlayBurned OverlaySource = "burned"
)

type OverlayTask struct {
	Source      OverlaySource
	Rendered    string
	Original    []byte
	Annotations []entity.Annotation
}
