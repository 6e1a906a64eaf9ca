package imageprocessor

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/color"
	"image/png"
	"testing"

	"github.com/andreyxaxa/oral-screening/internal/dto"
	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type processorStub struct {
	normalized  []byte
	drawn       []byte
	err         error
	gotData     []byte
	annotations []entity.Annotation
}

func (p *processorStub) NormalizeJPEG(_ context.Context, data []byte) ([]byte, error) {
	p.gotData = data
	return p.normalized, p.err
}

func (p *processorStub) DrawAnnotations(_ context.Context, data []byte, annotations []entity.Annotation) ([]byte, error) {
	p.gotData = data
	p.annotations = annotations
	return p.drawn, p.err
}

func (p *processorStub) PrepareForReport(context.Context, []byte) ([]byte, int, int, error) {
	return nil, 0, 0, errors.New("not used")
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, imaging.New(4, 4, color.Black)))

	return buf.Bytes()
}

func TestDecodeDataURL(t *testing.T) {
	t.Parallel()

	raw := pngBytes(t)
	encoded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		in      string
		want    []byte
		wantErr bool
	}{
		{name: "png data URL", in: "data:image/png;base64," + encoded, want: raw},
		{name: "bare base64", in: encoded, want: raw},
		{name: "unpadded base64", in: base64.RawStdEncoding.EncodeToString(raw), want: raw},
		{name: "not an image", in: "data:text/plain;base64," + encoded, wantErr: true},
		{name: "no payload separator", in: "data:image/png;base64", wantErr: true},
		{name: "garbage", in: "%%%", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeDataURL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errs.KindValidation, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOverlayUseCase_Process_Rendered(t *testing.T) {
	t.Parallel()

	raw := pngBytes(t)
	p := &processorStub{normalized: []byte("jpeg")}

	out, err := New(p).Process(context.Background(), dto.OverlayTask{
		Source:   dto.OverlayRendered,
		Rendered: "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw),
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("jpeg"), out)
	assert.Equal(t, raw, p.gotData)
}

func TestOverlayUseCase_Process_Burned(t *testing.T) {
	t.Parallel()

	annotations := []entity.Annotation{{Type: entity.Square, X: 1, Y: 1, Width: 2, Height: 2}}
	p := &processorStub{drawn: []byte("drawn")}

	out, err := New(p).Process(context.Background(), dto.OverlayTask{
		Source:      dto.OverlayBurned,
		Original:    []byte("original"),
		Annotations: annotations,
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("drawn"), out)
	assert.Equal(t, []byte("original"), p.gotData)
	assert.Equal(t, annotations, p.annotations)
}

func TestOverlayUseCase_Process_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		task dto.OverlayTask
	}{
		{name: "undecodable rendering", task: dto.OverlayTask{Source: dto.OverlayRendered, Rendered: base64.StdEncoding.EncodeToString([]byte("x"))}},
		{name: "undecodable original", task: dto.OverlayTask{Source: dto.OverlayBurned, Original: []byte("x")}},
		{name: "unknown source", task: dto.OverlayTask{Source: "other"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			failing := &processorStub{err: errors.New("decode failed")}

			_, err := New(failing).Process(context.Background(), tt.task)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}
}
