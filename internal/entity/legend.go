package entity

// LegendItem is the display label and color of one shape type.
type LegendItem struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

type LegendEntry struct {
	Type ShapeType `json:"type"`
	LegendItem
}

type Recommendation struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type Legend struct {
	Entries         []LegendEntry    `json:"entries"`
	Recommendations []Recommendation `json:"recommendations"`
	// Placeholder is set only when no annotation types are present.
	Placeholder string `json:"placeholder,omitempty"`
}

const NoFindingsRecommendation = "No specific conditions noted that require immediate treatment recommendations."

func LegendFor(t ShapeType) (LegendItem, bool) {
	switch t {
	case Rectangle:
		return LegendItem{Label: "Stains", Color: "#EF4444"}, true
	case Square:
		return LegendItem{Label: "Malaligned", Color: "#22C55E"}, true
	case Circle:
		return LegendItem{Label: "Attrition", Color: "#3B82F6"}, true
	}
	return LegendItem{}, false
}

func RecommendationFor(label string) (string, bool) {
	switch label {
	case "Stains":
		return "Teeth cleaning and polishing is recommended to remove surface stains.", true
	case "Malaligned":
		return "Braces or Clear Aligners can be considered for teeth alignment.", true
	case "Attrition":
		return "A filling or a night guard may be necessary to prevent further wear.", true
	}
	return "", false
}

// ResolveLegend maps the distinct shape types of a submission to legend entries and
// treatment recommendations, both in first-encounter order.
func ResolveLegend(set AnnotationSet) Legend {
	var legend Legend

	for _, t := range set.Types() {
		item, ok := LegendFor(t)
		if !ok {
			continue
		}
		legend.Entries = append(legend.Entries, LegendEntry{Type: t, LegendItem: item})

		if text, ok := RecommendationFor(item.Label); ok {
			legend.Recommendations = append(legend.Recommendations, Recommendation{Label: item.Label, Text: text})
		}
	}

	if len(legend.Entries) == 0 {
		legend.Placeholder = NoFindingsRecommendation
	}

	return legend
}
