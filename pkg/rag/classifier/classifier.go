package classifier

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ipad-assistant-be/pkg/llm"
	"ipad-assistant-be/pkg/rag/category"
	"ipad-assistant-be/pkg/utils"
)

var examples = []struct {
	query string
	label category.Category
}{
	{"What's the price of iPad Pro?", category.Pricing},
	{"iPad Air vs iPad Pro differences", category.Comparison},
	{"My iPad won't turn on", category.Troubleshooting},
	{"iPad Pro M2 specifications", category.Specifications},
	{"Is the new iPad available?", category.Availability},
	{"What can iPad do?", category.Features},
	{"How to set up my new iPad?", category.Setup},
	{"Apple Pencil for iPad", category.Accessories},
	{"iPadOS 17 features", category.Updates},
}

// Classifier labels a query with one category from the closed set.
type Classifier struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewClassifier(llmProvider llm.LLMProvider, logger *log.Logger) *Classifier {
	return &Classifier{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Classify always returns a valid category. A non-nil error means the model
// could not be reached and the result fell back to General.
func (c *Classifier) Classify(ctx context.Context, query string, history string) (category.Category, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: c.buildPrompt(history)},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Query to classify: %s", query)},
	}

	raw, err := c.llmProvider.Chat(ctx, messages, llm.WithTemperature(0.0), llm.WithMaxTokens(10))
	if err != nil {
		c.logger.Printf("[ERROR] Classification failed: %v", err)
		return category.General, fmt.Errorf("classify: %w", err)
	}

	label := category.Parse(raw)
	if label == category.General && !strings.EqualFold(strings.TrimSpace(raw), string(category.General)) {
		c.logger.Printf("[WARN] Unknown category %q, defaulting to general", utils.Truncate(raw, 40))
	} else {
		c.logger.Printf("[CLASSIFY] %q classified as: %s", utils.Truncate(query, 50), label)
	}
	return label, nil
}

// Description returns the human readable description of a category.
func (c *Classifier) Description(cat category.Category) string {
	return cat.Description()
}

func (c *Classifier) buildPrompt(history string) string {
	var sb strings.Builder

	sb.WriteString("You are a query classifier for iPad-related questions. Classify the following query into one of these categories:\n\n")
	for _, cat := range category.All {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", cat, cat.Description()))
	}

	if strings.TrimSpace(history) != "" {
		sb.WriteString("\nPrevious conversation context:\n")
		sb.WriteString(history)
		sb.WriteString("\n\nUse this context to better understand the current query. If the user is continuing a previous topic, consider that in your classification.\n")
	}

	sb.WriteString("\nReturn only the category name in lowercase, nothing else.\n\nClassification examples:\n")
	for _, ex := range examples {
		sb.WriteString(fmt.Sprintf("- %q -> %s\n", ex.query, ex.label))
	}
	sb.WriteString("\nFocus on the main intent of the query.")

	return sb.String()
}
