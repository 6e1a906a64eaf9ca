package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formFile(t *testing.T, name, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, name))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["images"][0]
}

func encoded(t *testing.T, format imaging.Format) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(8, 6, color.White), format))

	return buf.Bytes()
}

func TestImage(t *testing.T) {
	t.Parallel()

	jpg := encoded(t, imaging.JPEG)
	png := encoded(t, imaging.PNG)

	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		maxSize     int64
		wantExt     string
		wantMsg     string
	}{
		{name: "jpeg", filename: "upper.JPG", contentType: "image/jpeg", data: jpg, wantExt: ".jpg"},
		{name: "png", filename: "front.png", contentType: "image/png", data: png, wantExt: ".png"},
		{name: "png sent as jpeg", filename: "lower.jpg", contentType: "image/jpeg", data: png, wantExt: ".jpg"},
		{name: "empty", filename: "a.png", contentType: "image/png", wantMsg: "empty"},
		{name: "too large", filename: "a.png", contentType: "image/png", data: png, maxSize: 10, wantMsg: "larger than"},
		{name: "gif content type", filename: "a.gif", contentType: "image/gif", data: []byte("GIF89a"), wantMsg: "JPEG and PNG"},
		{name: "webp extension", filename: "a.webp", contentType: "image/png", data: png, wantMsg: "extensions"},
		{name: "garbage behind png header", filename: "a.png", contentType: "image/png", data: []byte("definitely not pixels"), wantMsg: "not a valid"},
		{name: "truncated jpeg", filename: "a.jpg", contentType: "image/jpeg", data: jpg[:4], wantMsg: "not a valid"},
		{name: "gif body", filename: "a.png", contentType: "image/png", data: encoded(t, imaging.GIF), wantMsg: "not a valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ext, err := Image(formFile(t, tt.filename, tt.contentType, tt.data), tt.maxSize)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.Equal(t, errs.KindValidation, errs.KindOf(err))
				assert.Contains(t, errs.MessageOf(err), tt.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestAnnotationSet(t *testing.T) {
	t.Parallel()

	t.Run("decodes every shape", func(t *testing.T) {
		t.Parallel()

		raw := json.RawMessage(`[
			[{"type":"rectangle","x":10,"y":10,"width":50,"height":30,"stroke":"#EF4444","strokeWidth":2}],
			[],
			[{"type":"circle","x":6,"y":6,"radius":4},{"type":"square","x":0,"y":0,"width":5,"height":5,"fill":"transparent"}]
		]`)

		set, err := AnnotationSet(raw)
		require.NoError(t, err)
		require.Len(t, set, 3)
		assert.Equal(t, entity.Rectangle, set[0][0].Type)
		assert.Empty(t, set[1])
		assert.Equal(t, 4.0, set[2][0].Radius)
		assert.Equal(t, []entity.ShapeType{entity.Rectangle, entity.Circle, entity.Square}, set.Types())
	})

	t.Run("null is empty", func(t *testing.T) {
		t.Parallel()

		set, err := AnnotationSet(json.RawMessage("null"))
		require.NoError(t, err)
		assert.Empty(t, set)
	})

	invalid := map[string]string{
		"unknown type":          `[[{"type":"triangle","x":1,"y":1,"width":2,"height":2}]]`,
		"circle without radius": `[[{"type":"circle","x":1,"y":1}]]`,
		"zero width":            `[[{"type":"rectangle","x":1,"y":1,"width":0,"height":2}]]`,
		"negative x":            `[[{"type":"square","x":-1,"y":1,"width":2,"height":2}]]`,
		"bad stroke":            `[[{"type":"square","x":1,"y":1,"width":2,"height":2,"stroke":"red"}]]`,
		"too many images":       `[[],[],[],[]]`,
		"not json":              `[[{`,
	}

	for name, raw := range invalid {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := AnnotationSet(json.RawMessage(raw))
			require.Error(t, err)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))
		})
	}
}
