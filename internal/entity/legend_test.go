package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveLegendFirstEncounterOrder(t *testing.T) {
	set := AnnotationSet{
		{{Type: Rectangle}},
		{{Type: Circle}},
		{{Type: Rectangle}},
	}

	legend := ResolveLegend(set)

	assert.Equal(t, []LegendEntry{
		{Type: Rectangle, LegendItem: LegendItem{Label: "Stains", Color: "#EF4444"}},
		{Type: Circle, LegendItem: LegendItem{Label: "Attrition", Color: "#3B82F6"}},
	}, legend.Entries)
	assert.Equal(t, []Recommendation{
		{Label: "Stains", Text: "Teeth cleaning and polishing is recommended to remove surface stains."},
		{Label: "Attrition", Text: "A filling or a night guard may be necessary to prevent further wear."},
	}, legend.Recommendations)
	assert.Empty(t, legend.Placeholder)
}

func TestResolveLegendEmpty(t *testing.T) {
	for _, set := range []AnnotationSet{nil, {}, {{}, {}}} {
		legend := ResolveLegend(set)

		assert.Empty(t, legend.Entries)
		assert.Empty(t, legend.Recommendations)
		assert.Equal(t, NoFindingsRecommendation, legend.Placeholder)
	}
}

func TestResolveLegendAllTypes(t *testing.T) {
	set := AnnotationSet{{{Type: Square}, {Type: Circle}, {Type: Rectangle}, {Type: Square}}}

	legend := ResolveLegend(set)

	labels := make([]string, 0, len(legend.Entries))
	for _, e := range legend.Entries {
		labels = append(labels, e.Label)
	}
	assert.Equal(t, []string{"Malaligned", "Attrition", "Stains"}, labels)
	texts := make([]string, 0, len(legend.Recommendations))
	for _, r := range legend.Recommendations {
		texts = append(texts, r.Text)
	}
	assert.Equal(t, []string{
		"Braces or Clear Aligners can be considered for teeth alignment.",
		"A filling or a night guard may be necessary to prevent further wear.",
		"Teeth cleaning and polishing is recommended to remove surface stains.",
	}, texts)
}

func TestLegendTablesCoverEveryShape(t *testing.T) {
	for _, st := range ShapeTypes {
		item, ok := LegendFor(st)
		assert.True(t, ok, st)

		_, ok = RecommendationFor(item.Label)
		assert.True(t, ok, item.Label)
	}

	_, ok := LegendFor("triangle")
	assert.False(t, ok)
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#3B82F6")
	assert.NoError(t, err)
	assert.Equal(t, uint8(0x3B), c.R)
	assert.Equal(t, uint8(0x82), c.G)
	assert.Equal(t, uint8(0xF6), c.B)
	assert.Equal(t, uint8(0xFF), c.A)

	_, err = ParseHexColor("#12345")
	assert.Error(t, err)
	_, err = ParseHexColor("zzzzzz")
	assert.Error(t, err)
}
