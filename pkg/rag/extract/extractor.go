// Package extract mines raw search hits for loosely structured facts. It is
// keyword driven and shallow on purpose: the LLM does the reading.
package extract

import (
	"regexp"
	"strings"

	"ipad-assistant-be/pkg/rag/category"
	"ipad-assistant-be/pkg/search"
)

const (
	maxHits       = 10
	maxLatestInfo = 5
	maxKeyFacts   = 5
)

var pricePattern = regexp.MustCompile(`\$(\d{1,4}(?:,\d{3})*)`)

var (
	pricingTriggers = []string{"price", "cost", "$"}
	specTriggers    = []string{"processor", "display", "storage", "ram", "battery"}

	hintTriggers = map[category.Category][]string{
		category.Troubleshooting: {"restart", "reset", "fix", "support", "problem", "issue", "won't", "settings"},
		category.Comparison:      {" vs", "versus", "compare", "comparison", "differences"},
		category.Features:        {"feature", "apple pencil", "app", "stage manager", "multitask"},
		category.Accessories:     {"pencil", "keyboard", "case", "cover", "accessor"},
		category.Updates:         {"ipados", "update", "new in"},
	}
)

// PricingInfo accumulates every dollar amount found, with the titles of the
// hits they came from.
type PricingInfo struct {
	PricesFound []string `json:"prices_found"`
	Sources     []string `json:"sources"`
}

func (p PricingInfo) Empty() bool { return len(p.PricesFound) == 0 }

// FactBag is the fixed-shape output of Extract. Empty and absent groups are
// equivalent.
type FactBag struct {
	KeyFacts        []string          `json:"key_facts"`
	Specifications  map[string]string `json:"specifications"`
	Pricing         PricingInfo       `json:"pricing"`
	Features        []string          `json:"features"`
	Troubleshooting []string          `json:"troubleshooting"`
	Comparisons     []string          `json:"comparisons"`
	LatestInfo      []search.Hit      `json:"latest_info"`
}

// Empty reports whether no extractor fired.
func (f FactBag) Empty() bool {
	return len(f.KeyFacts) == 0 && len(f.Specifications) == 0 && f.Pricing.Empty() &&
		len(f.Features) == 0 && len(f.Troubleshooting) == 0 && len(f.Comparisons) == 0
}

// Extract processes at most the first ten hits. It has no side effects, so
// repeated calls on the same input return equal bags.
func Extract(hits []search.Hit, query string, cat category.Category) FactBag {
	bag := FactBag{Specifications: map[string]string{}}

	if len(hits) > maxHits {
		hits = hits[:maxHits]
	}

	for i, hit := range hits {
		if i < maxLatestInfo {
			bag.LatestInfo = append(bag.LatestInfo, hit)
		}

		text := strings.ToLower(hit.Content + " " + hit.Title)

		if containsAny(text, pricingTriggers) {
			extractPricing(&bag.Pricing, hit)
		}
		if containsAny(text, specTriggers) {
			extractSpecifications(bag.Specifications, strings.ToLower(hit.Content))
		}

		if triggers, ok := hintTriggers[cat]; ok && containsAny(text, triggers) {
			switch cat {
			case category.Troubleshooting:
				bag.Troubleshooting = appendUnique(bag.Troubleshooting, hit.Title)
			case category.Comparison:
				bag.Comparisons = appendUnique(bag.Comparisons, hit.Title)
			default:
				bag.Features = appendUnique(bag.Features, hit.Title)
			}
		}

		if len(bag.KeyFacts) < maxKeyFacts && mentionsQuery(text, query) {
			if fact := firstSentence(hit.Content); fact != "" {
				bag.KeyFacts = appendUnique(bag.KeyFacts, fact)
			}
		}
	}

	return bag
}

func extractPricing(p *PricingInfo, hit search.Hit) {
	matches := pricePattern.FindAllStringSubmatch(hit.Content, -1)
	if len(matches) == 0 {
		return
	}
	for _, m := range matches {
		p.PricesFound = append(p.PricesFound, "$"+m[1])
	}
	p.Sources = appendUnique(p.Sources, hit.Title)
}

// extractSpecifications records presence flags only.
func extractSpecifications(specs map[string]string, content string) {
	if strings.Contains(content, "display") {
		specs["display_info"] = "Display information found"
	}
	if strings.Contains(content, "processor") || strings.Contains(content, "chip") {
		specs["processor_info"] = "Processor information found"
	}
	if strings.Contains(content, "storage") {
		specs["storage_info"] = "Storage information found"
	}
	if strings.Contains(content, "battery") {
		specs["battery_info"] = "Battery information found"
	}
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func mentionsQuery(text, query string) bool {
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, "\"'?!.,:;()")
		if len(w) < 4 || w == "ipad" || w == "apple" {
			continue
		}
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ". "); i > 0 {
		return s[:i+1]
	}
	return s
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
