// Package scrape applies named CSS selector schemas to rendered HTML,
// producing the extracted-content records the pipeline consumes.
package scrape

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field maps one output key to a CSS selector. When Attr is empty the
// element text is extracted, otherwise the named attribute. Selectors
// may be comma-separated fallback chains; the first match in document
// order wins.
type Field struct {
	Name     string
	Selector string
	Attr     string
}

// Schema describes how to turn a document into a list of field maps:
// one map per element matching BaseSelector.
type Schema struct {
	Name         string
	BaseSelector string
	Fields       []Field
}

// Apply parses the HTML and extracts one record per base element.
// Fields with no match are omitted from the record; a page where the
// base selector matches nothing yields an empty slice, not an error.
func Apply(html string, schema Schema) ([]map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html for %s: %w", schema.Name, err)
	}

	var records []map[string]string
	doc.Find(schema.BaseSelector).Each(func(_ int, base *goquery.Selection) {
		record := make(map[string]string, len(schema.Fields))
		for _, field := range schema.Fields {
			value, ok := extractField(base, field)
			if ok {
				record[field.Name] = value
			}
		}
		records = append(records, record)
	})
	return records, nil
}

// ApplyJSON runs Apply and encodes the result as a JSON document, the
// boundary form payload reduction consumes. Shape checking stays with
// the consumer: the document is a claim about the page, not a typed
// contract.
func ApplyJSON(html string, schema Schema) ([]byte, error) {
	records, err := Apply(html, schema)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode extraction for %s: %w", schema.Name, err)
	}
	return raw, nil
}

func extractField(base *goquery.Selection, field Field) (string, bool) {
	sel := base.Find(field.Selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	if field.Attr != "" {
		return sel.Attr(field.Attr)
	}
	text := collapseWhitespace(sel.Text())
	if text == "" {
		return "", false
	}
	return text, true
}

// collapseWhitespace trims and squeezes runs of whitespace to single
// spaces, matching how text shows up in a rendered page.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
