// Package category holds the fixed set of category chips shown above the
// product listing. Products carry the tag in their category column.
package category

// All is the pseudo tag that disables category filtering.
const All = "all"

// Item is one category chip.
type Item struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var chips = []Item{
	{ID: All, Label: "All Products"},
	{ID: "solar-panels", Label: "Solar Panels"},
	{ID: "solar-lighting", Label: "Solar Lighting"},
	{ID: "solar-generators", Label: "Solar Generators"},
	{ID: "solar-accessories", Label: "Accessories"},
}

// Chips returns the chips in display order. The slice is a copy.
func Chips() []Item {
	out := make([]Item, len(chips))
	copy(out, chips)
	return out
}
