package scrape

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/backyonatan-alt/coronastats/internal/model"
)

var tracer = otel.Tracer("coronastats/internal/scrape")

func parseDocument(doc model.RawDocument) (*goquery.Document, error) {
	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return parsed, nil
}

// ExtractGlobal reads the headline counters using GlobalCounters.
func ExtractGlobal(ctx context.Context, doc model.RawDocument) (model.GlobalSnapshot, error) {
	return GlobalCounters.Extract(ctx, doc)
}

// Extract maps the matched anchors onto s.Fields in document order. With
// no match it returns an empty snapshot and a *ParseMiss. With a match
// count other than len(s.Fields) it returns the fields it could map along
// with a *ParseMiss; surplus anchors are ignored.
func (s CounterSchema) Extract(ctx context.Context, doc model.RawDocument) (model.GlobalSnapshot, error) {
	_, span := tracer.Start(ctx, "CounterSchema.Extract")
	defer span.End()

	var out model.GlobalSnapshot

	parsed, err := parseDocument(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse document")
		return out, err
	}

	anchors := parsed.Find(s.Selector)
	span.SetAttributes(attribute.Int("anchors", anchors.Length()))

	for i, node := range anchors.Nodes {
		if i >= len(s.Fields) {
			break
		}
		s.Fields[i].Set(&out, ParseCount(s.Path.Text(node)))
	}

	if anchors.Length() != len(s.Fields) {
		miss := &ParseMiss{
			Schema: s.Version,
			Anchor: s.Selector,
			Want:   len(s.Fields),
			Got:    anchors.Length(),
		}
		span.SetStatus(codes.Error, miss.Error())
		return out, miss
	}
	return out, nil
}
