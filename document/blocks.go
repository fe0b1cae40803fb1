// Package document assembles tariff documents as ordered content-block
// plans. Layout and pagination belong to the renderer; blocks carry only
// logical ordering and page-break hints, never coordinates.
package document

import "context"

// BlockType discriminates the content block variants
type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
	BlockTable     BlockType = "table"
	BlockKeyValue  BlockType = "key_value"
)

// ContentBlock is one logical unit of document content. Exactly the fields
// implied by Type are set.
type ContentBlock struct {
	Type BlockType `json:"type"`

	// PageBreakBefore asks the renderer to start a new page before this
	// block (one major section per printed page)
	PageBreakBefore bool `json:"page_break_before,omitempty"`

	// Heading / paragraph
	Text  string `json:"text,omitempty"`
	Level int    `json:"level,omitempty"`

	// Table
	Table *TableBlock `json:"table,omitempty"`

	// Key-value box
	KeyValues []KeyValue `json:"key_values,omitempty"`
}

// TableBlock is a rendered rate or summary table. The renderer must not
// split a row across a page boundary.
type TableBlock struct {
	Caption string     `json:"caption,omitempty"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// KeyValue is one line of a key-value box
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Renderer paginates a content-block stream into a fixed-page-size document
// and returns the byte buffer. The physical renderer is an external
// collaborator; any implementation honoring page-break hints and
// orphan-control suffices.
type Renderer interface {
	Render(ctx context.Context, blocks []ContentBlock) ([]byte, error)
}

func heading(text string, level int) ContentBlock {
	return ContentBlock{Type: BlockHeading, Text: text, Level: level}
}

func sectionHeading(text string) ContentBlock {
	return ContentBlock{Type: BlockHeading, Text: text, Level: 2, PageBreakBefore: true}
}

func paragraph(text string) ContentBlock {
	return ContentBlock{Type: BlockParagraph, Text: text}
}

func table(caption string, columns []string, rows [][]string) ContentBlock {
	return ContentBlock{Type: BlockTable, Table: &TableBlock{Caption: caption, Columns: columns, Rows: rows}}
}

func keyValueBox(pairs []KeyValue) ContentBlock {
	return ContentBlock{Type: BlockKeyValue, KeyValues: pairs}
}
