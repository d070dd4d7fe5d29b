package response

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"ipad-assistant-be/pkg/rag/category"
)

const maxCitations = 3

func (g *Generator) format(raw string, sources []string, cat category.Category, now time.Time) string {
	var sb strings.Builder

	if glyph := cat.Glyph(); glyph != "" {
		sb.WriteString(glyph)
		sb.WriteString(" ")
	}
	sb.WriteString(strings.TrimSpace(raw))

	if cited := Citations(sources); len(cited) > 0 {
		sb.WriteString("\n\n📚 **Sources:**")
		for i, src := range cited {
			sb.WriteString(fmt.Sprintf("\n%d. [%s](%s)", i+1, SourceLabel(src), src))
		}
	}

	sb.WriteString(fmt.Sprintf("\n\n*Information current as of %s*", now.Format("January 02, 2006")))
	return sb.String()
}

// Citations keeps the first three well-formed absolute http(s) URLs.
func Citations(sources []string) []string {
	out := make([]string, 0, maxCitations)
	for _, src := range sources {
		if len(out) == maxCitations {
			break
		}
		if link, ok := WebURL(src); ok {
			out = append(out, link)
		}
	}
	return out
}

// WebURL reports whether raw is an absolute http(s) URL with a host and
// returns it normalized.
func WebURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	return u.String(), true
}

// SourceLabel derives a readable name from a source URL.
func SourceLabel(src string) string {
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return "External Source"
	}
	host := strings.ToLower(u.Hostname())

	switch {
	case host == "support.apple.com":
		return "Apple Support"
	case host == "apple.com" || strings.HasSuffix(host, ".apple.com"):
		if strings.Contains(u.Path, "/shop") {
			return "Apple Store"
		}
		return "Apple Official"
	case strings.Contains(host, "serpapi") || strings.Contains(host, "google"):
		return "Web Search"
	}

	name := strings.TrimPrefix(host, "www.")
	if name == "" {
		return "External Source"
	}
	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + name[size:]
}
