package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ipad-assistant-be/pkg/rag/category"
)

func TestQueryVariants(t *testing.T) {
	tests := []struct {
		cat  category.Category
		want []string
	}{
		{
			cat: category.Pricing,
			want: []string{
				"Apple iPad Pro price",
				"Apple iPad Pro price price cost",
				"iPad Pro price pricing Apple Store",
			},
		},
		{
			cat: category.Troubleshooting,
			want: []string{
				"Apple iPad Pro price",
				"iPad Pro price troubleshooting fix problem",
				"iPad Pro price support help",
			},
		},
		{cat: category.General, want: []string{"Apple iPad Pro price"}},
		{cat: category.Updates, want: []string{"Apple iPad Pro price", "iPadOS Pro price update"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			assert.Equal(t, tt.want, QueryVariants("Pro price", tt.cat))
		})
	}

	for _, c := range category.All {
		assert.LessOrEqual(t, len(QueryVariants("x", c)), 3)
	}
}
