package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func ldDoc(t *testing.T, jsonld string) *goquery.Document {
	t.Helper()
	return docFromHTML(t,
		`<html><head><script type="application/ld+json">`+jsonld+`</script></head><body></body></html>`)
}

func TestJSONLDDate_DatePublished(t *testing.T) {
	doc := ldDoc(t, `{"@type":"NewsArticle","datePublished":"2024-01-05T10:00:00Z"}`)
	if got := jsonldDate(doc); got != "2024-01-05T10:00:00Z" {
		t.Errorf("jsonldDate = %q, want datePublished", got)
	}
}

func TestJSONLDDate_UploadDateFallback(t *testing.T) {
	doc := ldDoc(t, `{"@type":"VideoObject","uploadDate":"2024-02-10T12:00:00Z"}`)
	if got := jsonldDate(doc); got != "2024-02-10T12:00:00Z" {
		t.Errorf("jsonldDate = %q, want uploadDate", got)
	}
}

func TestJSONLDDate_Graph(t *testing.T) {
	doc := ldDoc(t, `{"@graph":[
		{"@type":"Organization","name":"Pub"},
		{"@type":"NewsArticle","datePublished":"2024-03-01T09:00:00Z"}
	]}`)
	if got := jsonldDate(doc); got != "2024-03-01T09:00:00Z" {
		t.Errorf("jsonldDate = %q, want graph article datePublished", got)
	}
}

func TestJSONLDDate_GraphDateModifiedFallback(t *testing.T) {
	doc := ldDoc(t, `{"@graph":[
		{"@type":"Article","dateModified":"2024-04-02T11:00:00Z"}
	]}`)
	if got := jsonldDate(doc); got != "2024-04-02T11:00:00Z" {
		t.Errorf("jsonldDate = %q, want graph dateModified", got)
	}
}

func TestJSONLDDate_TypeList(t *testing.T) {
	doc := ldDoc(t, `{"@graph":[
		{"@type":["Thing","BlogPosting"],"datePublished":"2024-05-03T07:00:00Z"}
	]}`)
	if got := jsonldDate(doc); got != "2024-05-03T07:00:00Z" {
		t.Errorf("jsonldDate = %q, want date from list-typed node", got)
	}
}

func TestJSONLDDate_NonArticleGraphIgnored(t *testing.T) {
	doc := ldDoc(t, `{"@graph":[
		{"@type":"BreadcrumbList","dateModified":"2024-06-04T06:00:00Z"}
	]}`)
	if got := jsonldDate(doc); got != "" {
		t.Errorf("jsonldDate = %q, want empty for non-article graph", got)
	}
}

func TestJSONLDDate_Malformed(t *testing.T) {
	doc := ldDoc(t, `{broken`)
	if got := jsonldDate(doc); got != "" {
		t.Errorf("jsonldDate = %q, want empty for malformed JSON", got)
	}
}

func TestJSONLDDate_NoScript(t *testing.T) {
	doc := docFromHTML(t, `<html><head></head><body></body></html>`)
	if got := jsonldDate(doc); got != "" {
		t.Errorf("jsonldDate = %q, want empty when no structured data", got)
	}
}
