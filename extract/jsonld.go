package extract

import (
	"encoding/json"

	"github.com/PuerkitoBio/goquery"
)

// articleTypes are the schema.org types whose graph entries carry the
// publish date we are after.
var articleTypes = map[string]struct{}{
	"Article":              {},
	"NewsArticle":          {},
	"BlogPosting":          {},
	"ReportageNewsArticle": {},
	"ScholarlyArticle":     {},
	"SocialMediaPosting":   {},
	"WebPage":              {},
	"VideoObject":          {},
}

// jsonldDate pulls a publish date out of the page's first embedded
// structured-data block.
//
// Lookup order: a direct datePublished, then uploadDate (video pages), then,
// when the block is an @graph collection, the first entry with an
// article-like @type, reading datePublished or dateModified. Malformed JSON
// is swallowed; structured data is advisory, never fatal.
func jsonldDate(doc *goquery.Document) string {
	raw := doc.Find(`script[type="application/ld+json"]`).First().Text()
	if raw == "" {
		return ""
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return ""
	}

	if v := stringField(data, "datePublished"); v != "" {
		return v
	}
	if v := stringField(data, "uploadDate"); v != "" {
		return v
	}

	graph, ok := data["@graph"].([]any)
	if !ok {
		return ""
	}
	for _, entry := range graph {
		node, ok := entry.(map[string]any)
		if !ok || !isArticleNode(node) {
			continue
		}
		if v := stringField(node, "datePublished"); v != "" {
			return v
		}
		if v := stringField(node, "dateModified"); v != "" {
			return v
		}
	}
	return ""
}

// isArticleNode checks the node's @type, which may be a string or a list.
func isArticleNode(node map[string]any) bool {
	switch t := node["@type"].(type) {
	case string:
		_, ok := articleTypes[t]
		return ok
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				if _, match := articleTypes[s]; match {
					return true
				}
			}
		}
	}
	return false
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
