package search

import (
	"fmt"

	"ipad-assistant-be/pkg/rag/category"
)

const maxQueryVariants = 3

// QueryVariants returns the base query plus up to two phrasings tailored to
// the category.
func QueryVariants(query string, cat category.Category) []string {
	variants := []string{fmt.Sprintf("Apple iPad %s", query)}

	switch cat {
	case category.Specifications:
		variants = append(variants,
			fmt.Sprintf("Apple iPad %s specs technical specifications", query),
			fmt.Sprintf("iPad %s features processor display", query))
	case category.Pricing:
		variants = append(variants,
			fmt.Sprintf("Apple iPad %s price cost", query),
			fmt.Sprintf("iPad %s pricing Apple Store", query))
	case category.Comparison:
		variants = append(variants,
			fmt.Sprintf("Apple iPad %s comparison vs", query),
			fmt.Sprintf("iPad %s differences compare", query))
	case category.Troubleshooting:
		variants = append(variants,
			fmt.Sprintf("iPad %s troubleshooting fix problem", query),
			fmt.Sprintf("iPad %s support help", query))
	case category.Availability:
		variants = append(variants,
			fmt.Sprintf("Apple iPad %s availability in stock", query),
			fmt.Sprintf("iPad %s release date available", query))
	case category.Accessories:
		variants = append(variants,
			fmt.Sprintf("iPad %s compatible accessories", query))
	case category.Updates:
		variants = append(variants,
			fmt.Sprintf("iPadOS %s update", query))
	}

	if len(variants) > maxQueryVariants {
		variants = variants[:maxQueryVariants]
	}
	return variants
}
