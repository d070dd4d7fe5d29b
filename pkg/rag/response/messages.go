package response

import (
	"fmt"
	"time"

	"ipad-assistant-be/pkg/rag/category"
)

const fallbackPrefix = "I apologize, but I'm having trouble accessing the latest search results right now. "

var fallbacks = map[category.Category]string{
	category.Specifications:  "I'd be happy to help you with iPad specifications. For the most current and detailed technical specifications as of %s, I recommend checking Apple's official website at apple.com/ipad or visiting an Apple Store where you can see the devices in person.",
	category.Pricing:         "For current iPad pricing information as of %s, please visit Apple's official website at apple.com/shop/buy-ipad or contact your local Apple Store. Prices may vary by region and are subject to change.",
	category.Comparison:      "To compare different iPad models with the latest %s specifications, I recommend using Apple's comparison tool at apple.com/ipad/compare.",
	category.Troubleshooting: "For troubleshooting your iPad, please visit Apple Support at support.apple.com/ipad where you'll find updated guides for %s, or contact Apple Support directly for personalized assistance.",
	category.Availability:    "For current iPad availability and stock information as of %s, please check Apple's website at apple.com/ipad or contact your local Apple Store.",
	category.Features:        "iPad offers many powerful features that are regularly updated. For detailed information about the latest iPad capabilities as of %s, please visit apple.com/ipad.",
	category.Accessories:     "Apple offers various iPad accessories including Apple Pencil, Magic Keyboard, and Smart Folio. For the complete %s selection and compatibility information, visit apple.com/ipad/accessories.",
	category.Setup:           "For help setting up your iPad with the latest %s instructions, visit Apple's setup guide at support.apple.com/ipad or use the built-in Setup Assistant on your device.",
	category.Updates:         "For information about the latest iPadOS updates as of %s, check Settings > General > Software Update on your iPad or visit apple.com/ipados.",
	category.General:         "For comprehensive information about iPads including the latest %s specifications, pricing, and features, please visit Apple's official iPad page at apple.com/ipad.",
}

// Fallback returns the static reply used when the model is unavailable.
func Fallback(cat category.Category, now time.Time) string {
	tmpl, ok := fallbacks[cat]
	if !ok {
		tmpl = fallbacks[category.General]
	}
	return fallbackPrefix + fmt.Sprintf(tmpl, now.Format("January 2006"))
}
