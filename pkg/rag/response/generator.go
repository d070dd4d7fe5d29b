package response

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"ipad-assistant-be/pkg/llm"
	"ipad-assistant-be/pkg/rag/category"
	"ipad-assistant-be/pkg/rag/extract"
)

// Request carries everything the generator needs for one answer.
type Request struct {
	Query    string
	Category category.Category
	Facts    extract.FactBag
	Sources  []string
	Context  string // rendered conversation history, may be empty
}

// Generator turns extracted facts into the final reply.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
	now         func() time.Time
}

// NewGenerator creates a new response generator
func NewGenerator(llmProvider llm.LLMProvider, logger *log.Logger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the clock used for the prompt date and freshness line.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate always returns a non-empty reply. When the model cannot be
// reached the category fallback text is returned together with the error.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	now := g.now()

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: buildSystemPrompt(req.Category, req.Context, now)},
		{Role: llm.RoleUser, Content: buildUserPrompt(req.Query, req.Facts)},
	}

	raw, err := g.llmProvider.Chat(ctx, messages)
	if err != nil {
		g.logger.Printf("[ERROR] Response generation failed: %v", err)
		return Fallback(req.Category, now), fmt.Errorf("generate: %w", err)
	}

	if strings.TrimSpace(raw) == "" {
		g.logger.Printf("[ERROR] Response generation returned empty text")
		return Fallback(req.Category, now), fmt.Errorf("generate: %w", llm.ErrEmptyCompletion)
	}

	g.logger.Printf("[GENERATION] Answer generated (Category: %s, Sources: %d)", req.Category, len(req.Sources))
	return g.format(raw, req.Sources, req.Category, now), nil
}

func buildSystemPrompt(cat category.Category, history string, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("You are an expert iPad assistant providing accurate, helpful, and up-to-date answers about Apple iPads.\n")
	sb.WriteString(fmt.Sprintf("Current date: %s\n\n", now.Format("January 2006")))

	sb.WriteString("Your role:\n")
	sb.WriteString("- Provide detailed, accurate information about iPads using the latest search results\n")
	sb.WriteString("- Be specific with model names, prices, and technical specifications when available\n")
	sb.WriteString("- Always prioritize information from official Apple sources (apple.com, support.apple.com)\n")
	sb.WriteString("- Mention when information might need verification and suggest checking Apple's official website\n")
	sb.WriteString("- Format responses clearly and conversationally\n\n")

	sb.WriteString(fmt.Sprintf("Query Type: %s\n", cat))
	if g, ok := guidance[cat]; ok {
		sb.WriteString(fmt.Sprintf("Guidance: %s\n", g))
	}

	if strings.TrimSpace(history) != "" {
		sb.WriteString("\nPrevious conversation context:\n")
		sb.WriteString(history)
		sb.WriteString("\n\nConsider this context when answering. If the user is asking a follow-up question, reference previous topics naturally and build upon them.\n")
	}

	sb.WriteString("\nResponse format:\n")
	sb.WriteString("1. Direct answer to the question using latest search results\n")
	sb.WriteString("2. Supporting details and context from search data\n")
	sb.WriteString("3. Specific information (prices, specs, dates) when available\n")
	sb.WriteString("4. Additional helpful tips or related information\n")
	sb.WriteString("5. Suggestion to verify latest info on Apple's website if needed\n")

	return sb.String()
}

var guidance = map[category.Category]string{
	category.Specifications:  "Include technical details, performance metrics, display info, processors",
	category.Pricing:         "Mention specific prices, storage options, where to buy, any deals",
	category.Comparison:      "Create clear comparisons with pros/cons, help users choose",
	category.Troubleshooting: "Provide step-by-step solutions and additional resources",
	category.Availability:    "Include release dates, stock status, where to find",
	category.Features:        "Explain capabilities, use cases, and practical applications",
	category.Accessories:     "Detail compatibility, features, and recommendations",
	category.Setup:           "Provide clear setup instructions and tips",
	category.Updates:         "Explain new features and how to update",
}

func buildUserPrompt(query string, facts extract.FactBag) string {
	return fmt.Sprintf(`User Query: %s

Latest search results and information:
%s

Please provide a comprehensive, conversational answer using the search results above.`, query, RenderFacts(facts))
}

// RenderFacts emits each populated FactBag group as a labelled block.
func RenderFacts(facts extract.FactBag) string {
	var sb strings.Builder

	if len(facts.LatestInfo) > 0 {
		sb.WriteString("=== LATEST SEARCH RESULTS ===\n")
		for i, hit := range facts.LatestInfo {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, orNA(hit.Title)))
			sb.WriteString(fmt.Sprintf("   Content: %s\n", orNA(hit.Content)))
			sb.WriteString(fmt.Sprintf("   Source: %s\n\n", orNA(hit.URL)))
		}
	}

	if !facts.Pricing.Empty() {
		sb.WriteString("=== PRICING INFORMATION ===\n")
		sb.WriteString(fmt.Sprintf("Prices found: %s\n", strings.Join(facts.Pricing.PricesFound, ", ")))
		if len(facts.Pricing.Sources) > 0 {
			sb.WriteString(fmt.Sprintf("Source: %s\n", strings.Join(facts.Pricing.Sources, "; ")))
		}
		sb.WriteString("\n")
	}

	if len(facts.Specifications) > 0 {
		sb.WriteString("=== SPECIFICATIONS MENTIONED ===\n")
		for _, key := range specOrder {
			if v, ok := facts.Specifications[key]; ok && v != "" {
				sb.WriteString(fmt.Sprintf("- %s: %s\n", specLabels[key], v))
			}
		}
		sb.WriteString("\n")
	}

	writeList(&sb, "KEY FACTS", facts.KeyFacts)
	writeList(&sb, "FEATURES", facts.Features)
	writeList(&sb, "TROUBLESHOOTING", facts.Troubleshooting)
	writeList(&sb, "COMPARISONS", facts.Comparisons)

	if sb.Len() == 0 {
		return "No specific search results available."
	}
	return strings.TrimRight(sb.String(), "\n")
}

var specOrder = []string{"display_info", "processor_info", "storage_info", "battery_info"}

var specLabels = map[string]string{
	"display_info":   "Display Info",
	"processor_info": "Processor Info",
	"storage_info":   "Storage Info",
	"battery_info":   "Battery Info",
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("=== %s ===\n", title))
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- %s\n", item))
	}
	sb.WriteString("\n")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
