package extract

import (
	"strings"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses spaces", "a   b\t\tc", "a b c"},
		{"caps blank lines", "a\n\n\n\n\nb", "a\n\nb"},
		{"strips line padding", "a \n b", "a\nb"},
		{"trims", "  a  ", "a"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeText(tt.in); got != tt.want {
				t.Errorf("normalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsBoilerplate(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Advertisement", true},
		{"RELATED POSTS you may like", true},
		{"Sign up for our newsletter today", true},
		{"The committee voted on the measure on Thursday.", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isBoilerplate(tt.text); got != tt.want {
			t.Errorf("isBoilerplate(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestFindContainer_PrefersSpecificSelector(t *testing.T) {
	e := testExtractor(t)

	doc := docFromHTML(t, `<html><body>
<article><p>generic wrapper</p></article>
<div class="article-body"><p>the real body</p></div>
</body></html>`)

	container := e.findContainer(doc)
	if container == nil {
		t.Fatal("findContainer returned nil")
	}
	if !strings.Contains(container.Text(), "the real body") {
		t.Errorf("container text = %q, want the .article-body match", container.Text())
	}
}

func TestFindContainer_NoMatch(t *testing.T) {
	e := testExtractor(t)

	doc := docFromHTML(t, `<html><body><div><p>plain page</p></div></body></html>`)
	if container := e.findContainer(doc); container != nil {
		t.Errorf("findContainer = %q, want nil for a page with no content container", container.Text())
	}
}

func TestCleanContainer_RemovesNonContent(t *testing.T) {
	doc := docFromHTML(t, `<html><body><article>
<p>keep this paragraph</p>
<script>tracking()</script>
<nav>site nav</nav>
<div class="ads">buy things</div>
</article></body></html>`)

	container := doc.Find("article").First()
	cleaned := cleanContainer(container)

	text := cleaned.Text()
	if !strings.Contains(text, "keep this paragraph") {
		t.Errorf("cleaned text lost the paragraph: %q", text)
	}
	for _, gone := range []string{"tracking()", "site nav", "buy things"} {
		if strings.Contains(text, gone) {
			t.Errorf("cleaned text still contains %q", gone)
		}
	}

	// The original container is untouched.
	if !strings.Contains(container.Text(), "site nav") {
		t.Error("cleanContainer must not mutate the original selection")
	}
}

func TestCleanContainer_Nil(t *testing.T) {
	if cleaned := cleanContainer(nil); cleaned != nil {
		t.Error("cleanContainer(nil) should be nil")
	}
}

func TestBodyText_ShortBlocksDropped(t *testing.T) {
	e := testExtractor(t)

	doc := docFromHTML(t, `<html><body><article>
<p>tiny stub</p>
<p>A sentence with plenty of characters to count as a substantial text block here.</p>
<p>Another sentence with plenty of characters to clear the content threshold overall.</p>
</article></body></html>`)

	cleaned := cleanContainer(doc.Find("article").First())
	body := e.bodyText(cleaned, "", "https://site.example/a")

	if strings.Contains(body, "tiny stub") {
		t.Errorf("short block should be dropped: %q", body)
	}
	if !strings.Contains(body, "substantial text block") {
		t.Errorf("long block missing: %q", body)
	}
}
