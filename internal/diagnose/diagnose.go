// Package diagnose summarizes failed pages so a dump's log line says what
// the scraper actually saw without anyone opening the HTML.
package diagnose

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Summarize describes a dumped page in one line: its title, how many day
// cells and performance rows it rendered, and whether a challenge script
// is present.
func Summarize(page []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return fmt.Sprintf("unparseable page (%d bytes)", len(page))
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "<no title>"
	}
	dayCells := doc.Find("div.day-number").Length()
	rows := doc.Find(".performance-row").Length()
	scripts := doc.Find("script").Length()

	return fmt.Sprintf("title=%q day_cells=%d performance_rows=%d scripts=%d bytes=%d",
		title, dayCells, rows, scripts, len(page))
}
