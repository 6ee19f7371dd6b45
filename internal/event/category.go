package event

type Category string

const (
	CategoryTech      Category = "tech"
	CategoryMuseum    Category = "museum"
	CategoryOutdoors  Category = "outdoors"
	CategoryPolitical Category = "political"
	CategoryMusic     Category = "music"
	CategorySports    Category = "sports"
	CategoryOther     Category = "other"
)

var knownCategories = map[Category]struct{}{
	CategoryTech:      {},
	CategoryMuseum:    {},
	CategoryOutdoors:  {},
	CategoryPolitical: {},
	CategoryMusic:     {},
	CategorySports:    {},
	CategoryOther:     {},
}

// CategoryOf normalizes a free-form type label. The second result reports
// whether the label is one of the known categories.
func CategoryOf(label *string) (Category, bool) {
	c := Category(Normalize(label))
	_, ok := knownCategories[c]
	return c, ok
}
