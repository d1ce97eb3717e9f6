// Package extract derives structured article metadata from rendered page
// HTML. Extraction is a pure function of page state: the same HTML and final
// URL always produce the same record. Every field is best-effort and derived
// independently through an ordered cascade of strategies.
package extract

import (
	"log/slog"
	nurl "net/url"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/araddon/dateparse"
	"golang.org/x/net/html"

	"github.com/linkpeel/linkpeel/config"
	"github.com/linkpeel/linkpeel/models"
)

// compiledSelector pairs a raw selector string with its compiled matcher.
type compiledSelector struct {
	raw     string
	matcher cascadia.Selector
}

// Extractor runs the extraction cascade. It is immutable after construction
// and safe for concurrent use.
type Extractor struct {
	selectors         []compiledSelector
	minParagraphChars int
	minContentChars   int
	mdConverter       *converter.Converter
}

// New compiles the configured container selectors. Invalid selectors are
// skipped with a warning; at least one must survive.
func New(cfg config.ExtractConfig) (*Extractor, error) {
	selectors := make([]compiledSelector, 0, len(cfg.ContainerSelectors))
	for _, raw := range cfg.ContainerSelectors {
		sel, err := cascadia.Compile(raw)
		if err != nil {
			slog.Warn("skipping invalid content selector", "selector", raw, "error", err)
			continue
		}
		selectors = append(selectors, compiledSelector{raw: raw, matcher: sel})
	}
	if len(selectors) == 0 {
		return nil, models.NewSessionError(models.ErrCodeInternal,
			"no valid content container selectors configured", nil)
	}

	return &Extractor{
		selectors:         selectors,
		minParagraphChars: cfg.MinParagraphChars,
		minContentChars:   cfg.MinContentChars,
		mdConverter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}, nil
}

// FromHTML extracts an ArticleRecord from the rendered HTML of the page at
// finalURL. It fails only when neither a title nor body content can be
// derived, with a NO_CONTENT error that callers can tell apart from a page
// that never loaded.
func (e *Extractor) FromHTML(rawHTML, finalURL, outputFormat string) (*models.ArticleRecord, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewSessionError(models.ErrCodeNoContent,
			"page HTML could not be parsed", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	title := firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		metaContent(doc, `meta[name="twitter:title"]`),
		func() string { return doc.Find("title").First().Text() },
		func() string { return doc.Find("h1, h2, h3").First().Text() },
	)

	container := e.findContainer(doc)
	cleaned := cleanContainer(container)

	image := resolveImageURL(finalURL, firstNonEmpty(
		metaContent(doc, `meta[property="og:image"]`),
		metaContent(doc, `meta[name="twitter:image"]`),
		firstContainerImage(container),
	))

	publishDate := firstNonEmpty(
		func() string { return normalizeDate(jsonldDate(doc)) },
		metaContent(doc, `meta[property="article:published_time"]`),
		metaContent(doc, `meta[name="date"]`),
		func() string {
			dt, _ := doc.Find("time[datetime]").First().Attr("datetime")
			return dt
		},
	)

	content := e.bodyText(cleaned, rawHTML, finalURL)

	if title == "" && content == "" {
		return nil, models.NewSessionError(models.ErrCodeNoContent,
			"page loaded but contained no extractable title or body", nil)
	}

	if outputFormat == models.OutputMarkdown && cleaned != nil && content != "" {
		if md := e.markdownBody(cleaned, finalURL); md != "" {
			content = md
		}
	}

	return &models.ArticleRecord{
		Title:       title,
		Image:       image,
		PublishDate: publishDate,
		Content:     content,
		URL:         finalURL,
	}, nil
}

// metaContent builds a candidate reading a meta tag's content attribute.
func metaContent(doc *goquery.Document, selector string) candidate {
	return func() string {
		content, _ := doc.Find(selector).First().Attr("content")
		return content
	}
}

// firstContainerImage builds a candidate reading the first image inside the
// article-like container, trying src then lazy-load attributes.
func firstContainerImage(container *goquery.Selection) candidate {
	return func() string {
		if container == nil {
			return ""
		}
		img := container.Find("img").First()
		if src, ok := img.Attr("src"); ok && src != "" {
			return src
		}
		if src, ok := img.Attr("data-src"); ok {
			return src
		}
		return ""
	}
}

// resolveImageURL makes a possibly-relative image URL absolute against the
// page's final URL. Any resolution failure yields an absent field rather
// than an error.
func resolveImageURL(finalURL, image string) string {
	if image == "" {
		return ""
	}
	base, err := nurl.Parse(finalURL)
	if err != nil {
		return ""
	}
	resolved, err := base.Parse(image)
	if err != nil {
		return ""
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// normalizeDate reformats a structured-data date as RFC 3339. A value that
// does not parse is returned as-is; structured data is usually ISO-8601
// already, and a raw string beats losing the field.
func normalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return raw
	}
	return t.Format(time.RFC3339)
}

// markdownBody converts the cleaned container's HTML to markdown, resolving
// relative links against the final URL. Empty on failure; the caller keeps
// the plain-text body instead.
func (e *Extractor) markdownBody(cleaned *goquery.Selection, finalURL string) string {
	html, err := goquery.OuterHtml(cleaned)
	if err != nil {
		return ""
	}
	md, err := e.mdConverter.ConvertString(html, converter.WithDomain(finalURL))
	if err != nil {
		slog.Debug("markdown conversion failed, keeping text body",
			"url", finalURL, "error", err)
		return ""
	}
	return strings.TrimSpace(md)
}
