package extract

import (
	"log/slog"
	nurl "net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// nonContentSelector matches the substructure stripped from a content
// container before text collection.
const nonContentSelector = "script, style, noscript, figcaption, .caption, " +
	"nav, aside, form, footer, " +
	".share, .social, .social-share, .sharing, " +
	".related, .related-posts, .related-articles, " +
	".comments, #comments, .comment-section, " +
	".advertisement, .ad, .ads, .ad-container, .newsletter"

// textElements are the descendants whose text makes up the article body.
const textElements = "p, h1, h2, h3, h4, h5, h6, li, blockquote"

// boilerplatePhrases mark a text block as page furniture rather than
// article body.
var boilerplatePhrases = []string{
	"advertisement",
	"related posts",
	"related articles",
	"sponsored content",
	"share this article",
	"sign up for our newsletter",
	"subscribe to our newsletter",
	"click here to subscribe",
	"follow us on",
	"all rights reserved",
}

var (
	spaceRuns   = regexp.MustCompile(`[ \t\r\f]+`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
	spacedLines = regexp.MustCompile(` ?\n ?`)
)

// findContainer probes the compiled selector list, most specific first, and
// returns the first matching container. nil when nothing matches.
func (e *Extractor) findContainer(doc *goquery.Document) *goquery.Selection {
	for _, sel := range e.selectors {
		if found := doc.FindMatcher(sel.matcher).First(); found.Length() > 0 {
			return found
		}
	}
	return nil
}

// cleanContainer returns a copy of the container with non-content
// substructure removed. nil in, nil out.
func cleanContainer(container *goquery.Selection) *goquery.Selection {
	if container == nil {
		return nil
	}
	cleaned := container.Clone()
	cleaned.Find(nonContentSelector).Remove()
	return cleaned
}

// bodyText collects the article text from the cleaned container: gather
// substantial text blocks and join them with blank lines. A result that is
// implausibly short falls back to readability over the whole document, then
// to the container's entire text.
func (e *Extractor) bodyText(cleaned *goquery.Selection, rawHTML, finalURL string) string {
	if cleaned != nil {
		var blocks []string
		cleaned.Find(textElements).Each(func(_ int, s *goquery.Selection) {
			t := strings.TrimSpace(s.Text())
			if len(t) > e.minParagraphChars && !isBoilerplate(t) {
				blocks = append(blocks, t)
			}
		})

		if body := strings.Join(blocks, "\n\n"); len(body) >= e.minContentChars {
			return normalizeText(body)
		}
	}

	if body := e.readabilityText(rawHTML, finalURL); body != "" {
		return body
	}

	if cleaned != nil {
		return normalizeText(cleaned.Text())
	}
	return ""
}

// readabilityText runs the Mozilla readability algorithm over the full page.
// Returns "" when it fails or finds less than the plausibility threshold.
func (e *Extractor) readabilityText(rawHTML, finalURL string) string {
	parsed, err := nurl.Parse(finalURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), parsed)
	if err != nil {
		slog.Debug("readability fallback failed", "url", finalURL, "error", err)
		return ""
	}
	text := strings.TrimSpace(article.TextContent)
	if len(text) < e.minContentChars {
		return ""
	}
	return normalizeText(text)
}

func isBoilerplate(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range boilerplatePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// normalizeText collapses runs of whitespace and excess blank lines.
func normalizeText(s string) string {
	s = spaceRuns.ReplaceAllString(s, " ")
	s = spacedLines.ReplaceAllString(s, "\n")
	s = newlineRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
