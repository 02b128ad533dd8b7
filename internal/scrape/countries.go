package scrape

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/html"

	"github.com/backyonatan-alt/coronastats/internal/model"
)

// ExtractCountries reads the per-country table using CountryColumns.
func ExtractCountries(ctx context.Context, doc model.RawDocument) ([]model.CountryRecord, error) {
	return CountryColumns.Extract(ctx, doc)
}

// Extract returns one record per table row in row order, without the
// trailing rows. The result is never nil: a missing table or a cell count
// that does not fit the schema yields an empty slice and a *ParseMiss.
func (s TableSchema) Extract(ctx context.Context, doc model.RawDocument) ([]model.CountryRecord, error) {
	_, span := tracer.Start(ctx, "TableSchema.Extract")
	defer span.End()

	records := []model.CountryRecord{}

	parsed, err := parseDocument(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse document")
		return records, err
	}

	table := parsed.Find(s.Selector).First()
	if table.Length() == 0 {
		miss := &ParseMiss{Schema: s.Version, Anchor: s.Selector, Want: 1, Got: 0, Detail: "table not found"}
		span.SetStatus(codes.Error, miss.Error())
		return records, miss
	}

	cells := table.ChildrenFiltered("tbody").ChildrenFiltered("tr").ChildrenFiltered("td")
	count := cells.Length()
	span.SetAttributes(attribute.Int("cells", count))

	if count%s.Width != 0 || count/s.Width < s.TrailingRows {
		miss := &ParseMiss{
			Schema: s.Version,
			Anchor: s.Selector + " > tbody > tr > td",
			Want:   s.Width,
			Got:    count,
			Detail: "cell count is not a multiple of the row width",
		}
		if count%s.Width == 0 {
			miss.Want = s.Width * s.TrailingRows
			miss.Detail = "missing trailing rows"
		}
		span.SetStatus(codes.Error, miss.Error())
		return records, miss
	}

	columns := s.columnAt()
	limit := count - s.Width*s.TrailingRows
	for i := 0; i < limit; i++ {
		pos := i % s.Width
		if pos == s.NameColumn {
			records = append(records, model.CountryRecord{Country: s.rowName(cells.Get(i))})
			continue
		}

		col := columns[pos]
		if col == nil || len(records) == 0 {
			continue
		}
		text := strings.TrimSpace(cells.Eq(i).Text())
		col.Set(&records[len(records)-1], ParseCount(text))
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

// rowName takes the first non-empty candidate of s.NamePaths, falling back
// to s.NameFallback when that trims to nothing. It may return "".
func (s TableSchema) rowName(cell *html.Node) string {
	name := ""
	for _, path := range s.NamePaths {
		name = path.Text(cell)
		if name != "" {
			break
		}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(s.NameFallback.Text(cell))
	}
	return name
}
