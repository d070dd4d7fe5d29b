// Package category holds the closed set of intent labels a user query can be
// assigned, with the descriptions and glyphs used when prompting and replying.
package category

import "strings"

type Category string

const (
	Specifications  Category = "specifications"
	Pricing         Category = "pricing"
	Comparison      Category = "comparison"
	Availability    Category = "availability"
	Troubleshooting Category = "troubleshooting"
	Features        Category = "features"
	Accessories     Category = "accessories"
	Setup           Category = "setup"
	Updates         Category = "updates"
	General         Category = "general"

	// Error tags a reply produced by the pipeline error state. It is never a
	// classification result.
	Error Category = "error"
)

// All lists the classifiable categories in prompt order.
var All = []Category{
	Specifications,
	Pricing,
	Comparison,
	Availability,
	Troubleshooting,
	Features,
	Accessories,
	Setup,
	Updates,
	General,
}

var descriptions = map[Category]string{
	Specifications:  "Technical specs, features, hardware details, processor, display, storage",
	Pricing:         "Price, cost, payment options, deals, discounts, availability for purchase",
	Comparison:      "Compare models, differences, which to choose, versus, vs",
	Availability:    "Stock, release dates, where to buy, when available",
	Troubleshooting: "Problems, fixes, support, how-to, not working, issues",
	Features:        "Software features, capabilities, what it can do, apps, functionality",
	Accessories:     "Apple Pencil, keyboards, cases, compatible accessories, add-ons",
	Setup:           "Initial setup, configuration, getting started, installation",
	Updates:         "Software updates, iPadOS, new versions, upgrade",
	General:         "General questions about iPad, basic information",
}

var glyphs = map[Category]string{
	Specifications:  "⚙️",
	Pricing:         "💰",
	Comparison:      "⚖️",
	Troubleshooting: "🔧",
	Availability:    "📦",
	Features:        "✨",
	Accessories:     "🎯",
	Setup:           "🚀",
	Updates:         "🔄",
	General:         "ℹ️",
}

func (c Category) String() string { return string(c) }

// Valid reports whether c belongs to the classifiable set.
func (c Category) Valid() bool {
	_, ok := descriptions[c]
	return ok
}

func (c Category) Description() string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return "General iPad information"
}

// Glyph returns the reply prefix for c, or "" for categories without one.
func (c Category) Glyph() string {
	return glyphs[c]
}

// Parse normalizes raw model output into a category. Anything outside the
// closed set, including empty and multi-word answers, becomes General.
func Parse(raw string) Category {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Trim(s, " \t\r\n\"'`.,:;!*")
	c := Category(s)
	if c.Valid() {
		return c
	}
	return General
}
