package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movedocs/tariffworks/document"
)

func samplePlan() []document.ContentBlock {
	return []document.ContentBlock{
		{Type: document.BlockHeading, Text: "Household Goods Tariff", Level: 1},
		{Type: document.BlockKeyValue, KeyValues: []document.KeyValue{
			{Key: "MC Number", Value: "MC-123456"},
			{Key: "Service Territory", Value: "48 contiguous states"},
		}},
		{Type: document.BlockParagraph, Text: "This tariff names the rates, rules, and charges applicable to the transportation of household goods."},
		{Type: document.BlockHeading, Text: "Section 7 — Transportation Rates", Level: 2, PageBreakBefore: true},
		{Type: document.BlockTable, Table: &document.TableBlock{
			Caption: "Rate per pound by weight and distance",
			Columns: []string{"Weight", "Up to 250 mi", "Up to 500 mi"},
			Rows: [][]string{
				{"Up to 1,000 lbs", "$0.95", "$0.85"},
				{"Up to 2,000 lbs", "$0.90", "$0.80"},
			},
		}},
	}
}

func TestPDFRendererProducesPDF(t *testing.T) {
	renderer := NewPDFRenderer()

	content, err := renderer.Render(context.Background(), samplePlan())

	require.NoError(t, err)
	require.NotEmpty(t, content)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestPDFRendererIsDeterministic(t *testing.T) {
	renderer := NewPDFRenderer()

	first, err := renderer.Render(context.Background(), samplePlan())
	require.NoError(t, err)
	second, err := renderer.Render(context.Background(), samplePlan())
	require.NoError(t, err)

	assert.Equal(t, len(first), len(second))
}

func TestPDFRendererCanceledContext(t *testing.T) {
	renderer := NewPDFRenderer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	content, err := renderer.Render(ctx, samplePlan())

	assert.Error(t, err)
	assert.Nil(t, content)
}

func TestPDFRendererEmptyPlan(t *testing.T) {
	renderer := NewPDFRenderer()

	content, err := renderer.Render(context.Background(), nil)

	require.NoError(t, err)
	assert.NotEmpty(t, content)
}

func TestPDFRendererLargeTableSpansPages(t *testing.T) {
	rows := make([][]string, 0, 120)
	for i := 0; i < 120; i++ {
		rows = append(rows, []string{"Up to 1,000 lbs", "$0.95", "$0.85"})
	}
	blocks := []document.ContentBlock{
		{Type: document.BlockTable, Table: &document.TableBlock{
			Columns: []string{"Weight", "Up to 250 mi", "Up to 500 mi"},
			Rows:    rows,
		}},
	}

	renderer := NewPDFRenderer()
	content, err := renderer.Render(context.Background(), blocks)

	require.NoError(t, err)
	assert.NotEmpty(t, content)
}
