package search

import (
	"context"
	"strings"
)

// Canned is the last step of the chain. It never touches the network and
// never returns an empty list.
type Canned struct{}

func NewCanned() *Canned { return &Canned{} }

func (c *Canned) Name() string { return SourceCanned }

func (c *Canned) TrySearch(_ context.Context, req Request) ([]Hit, error) {
	return c.Hits(req.Query, req.Limit), nil
}

// Hits selects the canned set matching the query keywords.
func (c *Canned) Hits(query string, limit int) []Hit {
	var set []Hit
	switch {
	case matches(query, pricingKeywords):
		set = cannedPricing
	case matches(query, specKeywords):
		set = cannedSpecifications
	case matches(query, troubleshootingKeywords):
		set = cannedTroubleshooting
	default:
		set = cannedGeneral
	}

	if limit > 0 && limit < len(set) {
		set = set[:limit]
	}
	out := make([]Hit, len(set))
	copy(out, set)
	return out
}

var (
	pricingKeywords         = []string{"price", "pricing", "cost", "$", "cheap", "buy", "deal", "discount"}
	specKeywords            = []string{"spec", "processor", "chip", "display", "storage", "battery", "ram", "screen size", "weight"}
	troubleshootingKeywords = []string{"troubleshoot", "fix", "problem", "not working", "won't", "wont", "can't", "issue", "frozen", "reset", "support", "help"}
)

func matches(query string, keywords []string) bool {
	lower := strings.ToLower(query)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

var cannedPricing = []Hit{
	{
		Title:   "Buy iPad Pro - Apple Store",
		URL:     "https://www.apple.com/shop/buy-ipad/ipad-pro",
		Content: "iPad Pro 11-inch starts at $999 and iPad Pro 13-inch starts at $1,299. Choose 256GB, 512GB, 1TB or 2TB and pay over time with Apple Card Monthly Installments.",
		Source:  SourceCanned,
	},
	{
		Title:   "Buy iPad Air - Apple Store",
		URL:     "https://www.apple.com/shop/buy-ipad/ipad-air",
		Content: "iPad Air 11-inch starts at $599 and iPad Air 13-inch starts at $799. Education pricing and trade-in credit are available.",
		Source:  SourceCanned,
	},
	{
		Title:   "Buy iPad and iPad mini - Apple Store",
		URL:     "https://www.apple.com/shop/buy-ipad",
		Content: "iPad starts at $349 and iPad mini starts at $499. Compare prices across every model and get free delivery or pickup.",
		Source:  SourceCanned,
	},
}

var cannedSpecifications = []Hit{
	{
		Title:   "iPad Pro - Technical Specifications - Apple",
		URL:     "https://www.apple.com/ipad-pro/specs/",
		Content: "Ultra Retina XDR display with tandem OLED, M4 chip with 10-core CPU, storage from 256GB to 2TB, up to 10 hours of battery life and Thunderbolt / USB 4 connector.",
		Source:  SourceCanned,
	},
	{
		Title:   "iPad Air - Technical Specifications - Apple",
		URL:     "https://www.apple.com/ipad-air/specs/",
		Content: "Liquid Retina display, M2 processor, storage options of 128GB, 256GB, 512GB and 1TB, with all-day battery life and Apple Pencil Pro support.",
		Source:  SourceCanned,
	},
	{
		Title:   "iPad Technical Specifications - Apple Support",
		URL:     "https://support.apple.com/specs/ipad",
		Content: "Technical specifications for every iPad model including display, processor, storage and connectivity options.",
		Source:  SourceCanned,
	},
}

// Troubleshooting content stays clear of pricing and spec trigger words.
var cannedTroubleshooting = []Hit{
	{
		Title:   "If your iPad won't turn on or is frozen - Apple Support",
		URL:     "https://support.apple.com/en-us/118434",
		Content: "If your iPad has a black screen or is frozen, force restart it: press and quickly release the volume button nearest the top button, press and quickly release the other volume button, then press and hold the top button until the Apple logo appears. If it still won't start, charge it for an hour and try again.",
		Source:  SourceCanned,
	},
	{
		Title:   "If your iPad can't connect to Wi-Fi - Apple Support",
		URL:     "https://support.apple.com/en-us/111786",
		Content: "Make sure your router is on and you're within range. Go to Settings > Wi-Fi, turn Wi-Fi off and back on, then forget the network and join it again. Restarting the iPad and the router often resolves the issue.",
		Source:  SourceCanned,
	},
	{
		Title:   "Get help with iPad - Apple Support",
		URL:     "https://support.apple.com/ipad",
		Content: "Find step-by-step guides for common iPad issues, including apps that quit unexpectedly, touch screen problems and Apple Pencil pairing. You can also contact Apple Support or book a Genius Bar appointment.",
		Source:  SourceCanned,
	},
}

var cannedGeneral = []Hit{
	{
		Title:   "iPad - Apple",
		URL:     "https://www.apple.com/ipad/",
		Content: "Explore iPad models including iPad Pro, iPad Air, iPad mini and iPad. Find the perfect iPad for your needs with features like Apple Pencil support, advanced displays and powerful chips.",
		Source:  SourceCanned,
	},
	{
		Title:   "iPad User Guide - Apple Support",
		URL:     "https://support.apple.com/guide/ipad/",
		Content: "Complete guide for using your iPad including setup, troubleshooting and advanced features. Get help with common issues and learn new tips.",
		Source:  SourceCanned,
	},
	{
		Title:   "Buy iPad - Apple Store",
		URL:     "https://www.apple.com/shop/buy-ipad/",
		Content: "Shop for iPad with various storage options, colors and accessories. Compare prices and find the best iPad for your budget and needs.",
		Source:  SourceCanned,
	},
	{
		Title:   "Compare iPad Models - Apple",
		URL:     "https://www.apple.com/ipad/compare/",
		Content: "Compare different iPad models side by side including iPad Pro, iPad Air and iPad mini. See differences in features, pricing and specifications.",
		Source:  SourceCanned,
	},
	{
		Title:   "iPadOS - Apple",
		URL:     "https://www.apple.com/ipados/",
		Content: "iPadOS brings Stage Manager, Apple Intelligence and new apps to iPad. Learn what's new and how to update.",
		Source:  SourceCanned,
	},
}
