package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Format selects how listings are written
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %s (valid: table, json, yaml)", s)
	}
}

// Listing is one collection prepared for output
type Listing struct {
	Kind    string
	Columns []string
	Rows    [][]string
	// Records is what json and yaml output encode
	Records any
}

var (
	titleStyle = color.New(color.Bold, color.FgHiWhite)
	idStyle    = color.New(color.Faint)
)

// ResourcesRenderer writes listings as tables, JSON or YAML
type ResourcesRenderer struct {
	out   io.Writer
	color bool
}

// NewResourcesRenderer creates a new resources renderer
func NewResourcesRenderer(out io.Writer, color bool) *ResourcesRenderer {
	return &ResourcesRenderer{out: out, color: color}
}

// Render writes l in the given format
func (r *ResourcesRenderer) Render(l Listing, format Format) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(l.Records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(r.out, string(data))
		return nil
	case FormatYAML:
		data, err := toYAML(l.Records)
		if err != nil {
			return err
		}
		fmt.Fprint(r.out, string(data))
		return nil
	default:
		r.renderTable(l)
		return nil
	}
}

func (r *ResourcesRenderer) renderTable(l Listing) {
	title := cases.Title(language.English).String(l.Kind)
	if len(l.Rows) == 0 {
		fmt.Fprintf(r.out, "No %s found\n", l.Kind)
		return
	}

	fmt.Fprintln(r.out, r.paint(titleStyle, fmt.Sprintf("%s (%d)", title, len(l.Rows))))

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateRows = false
	t.Style().Box = table.BoxStyle{
		PaddingRight:     "   ",
		MiddleHorizontal: "─",
	}
	t.Style().Format.Header = text.FormatUpper

	header := make(table.Row, len(l.Columns))
	for i, c := range l.Columns {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, row := range l.Rows {
		tableRow := make(table.Row, len(row))
		for i, cell := range row {
			if i == 0 {
				cell = r.paint(idStyle, cell)
			}
			tableRow[i] = cell
		}
		t.AppendRow(tableRow)
	}
	fmt.Fprintln(r.out, t.Render())
}

func (r *ResourcesRenderer) paint(c *color.Color, s string) string {
	if !r.color {
		return s
	}
	return c.Sprint(s)
}

// toYAML converts records through their JSON form so keys keep their wire names and order
func toYAML(records any) ([]byte, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal records: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to convert to YAML: %w", err)
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// blockStyle clears the flow and quoting styles JSON input carries
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
