package category

// Category is the closed set of eco-location kinds the map knows how to
// render, group and filter. The zero value means "all categories".
type Category string

const (
	WaterRefill      Category = "water-refill"
	EcoRestaurant    Category = "eco-restaurant"
	WasteDisposal    Category = "waste-disposal"
	CulturalHeritage Category = "cultural-heritage"
	EcoAccommodation Category = "eco-accommodation"
)

var canonical = []Category{
	WaterRefill,
	EcoRestaurant,
	WasteDisposal,
	CulturalHeritage,
	EcoAccommodation,
}

// All returns the categories in canonical display order.
func All() []Category {
	out := make([]Category, len(canonical))
	copy(out, canonical)
	return out
}

func Parse(s string) (Category, bool) {
	c := Category(s)
	if c.Valid() {
		return c, true
	}
	return "", false
}

func (c Category) Valid() bool {
	switch c {
	case WaterRefill, EcoRestaurant, WasteDisposal, CulturalHeritage, EcoAccommodation:
		return true
	}
	return false
}

// IsAll reports whether c is the "all categories" filter.
func (c Category) IsAll() bool {
	return c == ""
}

// Label is the plural heading used for list groups and filter chips.
func (c Category) Label() string {
	switch c {
	case WaterRefill:
		return "Water Refill Stations"
	case EcoRestaurant:
		return "Eco-Friendly Restaurants"
	case WasteDisposal:
		return "Waste Disposal Points"
	case CulturalHeritage:
		return "Cultural Heritage Sites"
	case EcoAccommodation:
		return "Eco-Accommodations"
	}
	return "Eco-Locations"
}

// Describe is the singular form used in announcements.
func (c Category) Describe() string {
	switch c {
	case WaterRefill:
		return "Water refill station"
	case EcoRestaurant:
		return "Eco-friendly restaurant"
	case WasteDisposal:
		return "Waste disposal point"
	case CulturalHeritage:
		return "Cultural heritage site"
	case EcoAccommodation:
		return "Eco-accommodation"
	}
	return "Eco-location"
}

func (c Category) Color() string {
	switch c {
	case WaterRefill:
		return "blue"
	case EcoRestaurant:
		return "green"
	case WasteDisposal:
		return "orange"
	case CulturalHeritage:
		return "purple"
	case EcoAccommodation:
		return "indigo"
	}
	return "gray"
}

func (c Category) Icon() string {
	switch c {
	case WaterRefill:
		return "droplets"
	case EcoRestaurant:
		return "utensils"
	case WasteDisposal:
		return "recycle"
	case CulturalHeritage, EcoAccommodation:
		return "building"
	}
	return "map-pin"
}
