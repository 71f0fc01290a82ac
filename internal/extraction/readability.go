// internal/extraction/readability.go
// HTML to main-article-text extraction built on goquery
package extraction

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Elements that never contain article body text
const boilerplateSelector = "script, style, noscript, iframe, svg, nav, header, footer, aside, form, button, figure figcaption"

// Containers that usually hold the article body, tried in precision mode
var articleContainers = []string{
	"article",
	"main",
	"[itemprop='articleBody']",
	".article-body",
	".article-content",
	".story-content",
	".entry-content",
	".post-content",
	"#article-body",
}

var whitespaceRun = regexp.MustCompile(`[ \t]+`)

// ExtractMainText extracts the main article text from an HTML document.
//
// Precision mode (favorRecall=false) only collects paragraphs inside known
// article containers, giving cleaner output on well-structured pages. Recall
// mode collects every paragraph left after boilerplate removal, catching
// more content at the cost of noise. The empty string signals that nothing
// usable was found; callers retry with recall and discard short extractions.
func ExtractMainText(html string, favorRecall bool) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find(boilerplateSelector).Remove()

	var paragraphs []string
	appendText := func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(whitespaceRun.ReplaceAllString(sel.Text(), " "))
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	if !favorRecall {
		for _, container := range articleContainers {
			doc.Find(container + " p").Each(appendText)
			if len(paragraphs) > 0 {
				break
			}
		}
	} else {
		doc.Find("p").Each(appendText)
		if len(paragraphs) == 0 {
			doc.Find("td, li").Each(appendText)
		}
	}

	return strings.TrimSpace(strings.Join(paragraphs, "\n"))
}
