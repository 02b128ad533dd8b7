// Package scrapetest builds documents shaped like the statistics page for
// tests.
package scrapetest

import (
	"fmt"
	"strings"
)

// Row is one table row. Name is raw HTML placed inside the first cell;
// Values fill the remaining eight cells in order.
type Row struct {
	Name   string
	Values []string
}

// Counter renders one headline counter element the way the page does:
// whitespace, then a span holding the number.
func Counter(text string) string {
	return fmt.Sprintf("<div class=\"maincounter-number\">\n  <span style=\"color:#aaa\">%s </span>\n</div>", text)
}

// Table renders the countries table with rows followed by a totals row.
func Table(rows ...Row) string {
	var b strings.Builder
	b.WriteString("<table id=\"main_table_countries\">\n")
	b.WriteString("<thead><tr><th>Country,Other</th><th>Total Cases</th><th>New Cases</th><th>Total Deaths</th>")
	b.WriteString("<th>New Deaths</th><th>Total Recovered</th><th>Active Cases</th><th>Serious, Critical</th><th>Tot Cases/1M pop</th></tr></thead>\n")
	b.WriteString("<tbody>\n")
	for _, row := range rows {
		writeRow(&b, row)
	}
	writeRow(&b, Row{
		Name:   "<strong>Total:</strong>",
		Values: []string{"999,999", "+1", "9,999", "+1", "99,999", "1", "9", "1"},
	})
	b.WriteString("</tbody>\n</table>\n")
	return b.String()
}

func writeRow(b *strings.Builder, row Row) {
	b.WriteString("<tr>")
	fmt.Fprintf(b, "<td>%s</td>", row.Name)
	for i := 0; i < 8; i++ {
		value := ""
		if i < len(row.Values) {
			value = row.Values[i]
		}
		fmt.Fprintf(b, "<td>%s</td>", value)
	}
	b.WriteString("</tr>\n")
}

// Page wraps body fragments in a full document.
func Page(fragments ...string) string {
	return "<!DOCTYPE html>\n<html><head><title>Coronavirus Update</title></head><body>\n" +
		strings.Join(fragments, "\n") +
		"\n</body></html>"
}

// Standard returns a page with counters 1,000 / 50 / 200 and two country
// rows, China and Italy.
func Standard() string {
	return Page(
		Counter("1,000"),
		Counter("50"),
		Counter("200"),
		Table(
			Row{Name: "China", Values: []string{"80,824", "+11", "3,189", "+13", "65,573", "11,991", "3,610", "56"}},
			Row{Name: "<a class=\"mt_a\" href=\"country/italy/\">Italy</a>", Values: []string{"24,747", "+3,590", "1,809", "+368", "2,335", "20,603", "1,672", "409"}},
		),
	)
}
