package summarize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Vovarama1992/tableau-ai-bridge/internal/config"
)

// PromptBuilder renders a Request into the text sent to the model.
// It is a pure function of its input and is safe for concurrent use.
type PromptBuilder struct {
	maxRows   int
	maxFields int
	markdown  bool
}

type Option func(*PromptBuilder)

// WithMaxRows caps the sample rows rendered per sheet.
func WithMaxRows(n int) Option {
	return func(b *PromptBuilder) {
		if n > 0 {
			b.maxRows = n
		}
	}
}

// WithMaxFields caps the dimensions and, separately, the measures rendered per datasource.
func WithMaxFields(n int) Option {
	return func(b *PromptBuilder) {
		if n > 0 {
			b.maxFields = n
		}
	}
}

// WithMarkdownSamples renders sample rows as a markdown table instead of compact CSV.
func WithMarkdownSamples() Option {
	return func(b *PromptBuilder) { b.markdown = true }
}

func NewPromptBuilder(opts ...Option) *PromptBuilder {
	b := &PromptBuilder{
		maxRows:   config.DefaultMaxRows,
		maxFields: config.DefaultMaxFields,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewPromptBuilderFromConfig applies the prompt section of the configuration.
func NewPromptBuilderFromConfig(cfg config.PromptConfig) *PromptBuilder {
	opts := []Option{WithMaxRows(cfg.MaxRows), WithMaxFields(cfg.MaxFields)}
	if cfg.SampleFormat == config.SampleFormatMarkdown {
		opts = append(opts, WithMarkdownSamples())
	}
	return NewPromptBuilder(opts...)
}

// Build assembles the prompt sections in fixed order: system instruction,
// dashboard context, active filters, business context, datasource
// information and sheet data. Optional sections are left out when empty.
func (b *PromptBuilder) Build(req Request) string {
	parts := []string{systemInstruction(req.SystemPrompt)}

	parts = append(parts, headerDashboard)
	parts = append(parts, "Dashboard: "+orDefault(req.Metadata.DashboardName, "N/A"))

	if len(req.Metadata.Filters) > 0 {
		parts = append(parts, headerFilters)
		for _, f := range req.Metadata.Filters {
			parts = append(parts, fmt.Sprintf("- %s: %s", f.Field, formatValue(f.Value)))
		}
	}

	// may carry formatting instructions that override the default bullet style
	if req.Context != "" {
		parts = append(parts, headerBusinessContext)
		parts = append(parts, req.Context)
	}

	if len(req.Datasources) > 0 {
		parts = append(parts, b.formatDatasources(req.Datasources))
	}

	parts = append(parts, headerSheets)
	for _, sheet := range req.Sheets {
		parts = append(parts, b.formatSheet(sheet))
	}

	return strings.Join(parts, "\n")
}

func systemInstruction(override *string) string {
	if override != nil && strings.TrimSpace(*override) != "" {
		return *override
	}
	return SystemInstruction
}

func (b *PromptBuilder) formatSheet(sheet SheetData) string {
	parts := []string{
		"\n### Sheet: " + orDefault(sheet.Name, "Unknown"),
		"Columns: " + strings.Join(sheet.Columns, ", "),
		"Row Count: " + strconv.Itoa(len(sheet.Data)),
	}

	if len(sheet.Data) > 0 && len(sheet.Columns) > 0 {
		sample := min(b.maxRows, len(sheet.Data))
		if b.markdown {
			parts = append(parts, headerSampleMarkdown, FormatMarkdownTable(sheet.Columns, sheet.Data[:sample]))
		} else {
			parts = append(parts, headerSampleCSV, FormatCompactTable(sheet.Columns, sheet.Data[:sample]))
		}

		if len(sheet.Data) > sample {
			parts = append(parts, fmt.Sprintf("(Showing %d of %d rows)", sample, len(sheet.Data)))
		}
	}

	return strings.Join(parts, "\n")
}

// FormatCompactTable renders rows as CSV: a header line, then one line per
// row in column order. Commas inside cells become semicolons so every line
// keeps the header's column count; quotes and newlines are left as is.
func FormatCompactTable(columns []string, rows []map[string]any) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(columns, ","))

	cells := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			cells[i] = strings.ReplaceAll(formatValue(row[col]), ",", ";")
		}
		lines = append(lines, strings.Join(cells, ","))
	}

	return strings.Join(lines, "\n")
}

func FormatMarkdownTable(columns []string, rows []map[string]any) string {
	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, "| "+strings.Join(columns, " | ")+" |")
	lines = append(lines, "|"+strings.Repeat("---|", len(columns)))

	cells := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			cells[i] = formatValue(row[col])
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
	}

	return strings.Join(lines, "\n")
}

func (b *PromptBuilder) formatDatasources(datasources []DatasourceInfo) string {
	parts := []string{
		headerDatasources,
		fmt.Sprintf("Total Datasources: %d", len(datasources)),
	}

	for idx, ds := range datasources {
		parts = append(parts, fmt.Sprintf("\n### Datasource %d: %s", idx+1, orDefault(ds.Name, "Unknown")))
		parts = append(parts, "**Connection:** "+orDefault(ds.ConnectionName, "N/A"))

		if ds.IsExtract {
			parts = append(parts, "**Type:** Extract")
			if ds.ExtractUpdateTime != "" {
				parts = append(parts, "**Last Refreshed:** "+ds.ExtractUpdateTime)
			}
		} else {
			parts = append(parts, "**Type:** Live Connection")
		}

		if len(ds.Tables) > 0 {
			names := make([]string, len(ds.Tables))
			for i, t := range ds.Tables {
				names[i] = orDefault(t.Name, "Unknown")
			}
			parts = append(parts, "**Tables:** "+strings.Join(names, ", "))
		}

		if len(ds.Fields) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("\n**Field Definitions (%d fields):**", len(ds.Fields)))

		dimensions := visibleFields(ds.Fields, RoleDimension)
		measures := visibleFields(ds.Fields, RoleMeasure)

		if len(dimensions) > 0 {
			parts = append(parts, "\n*Dimensions:*")
			parts = append(parts, b.formatFieldGroup(dimensions, "dimensions")...)
		}
		if len(measures) > 0 {
			parts = append(parts, "\n*Measures:*")
			parts = append(parts, b.formatFieldGroup(measures, "measures")...)
		}
	}

	return strings.Join(parts, "\n")
}

func visibleFields(fields []FieldInfo, role FieldRole) []FieldInfo {
	var out []FieldInfo
	for _, f := range fields {
		if f.Role == role && !f.IsHidden {
			out = append(out, f)
		}
	}
	return out
}

func (b *PromptBuilder) formatFieldGroup(fields []FieldInfo, label string) []string {
	shown := min(b.maxFields, len(fields))
	lines := make([]string, 0, shown+1)
	for _, f := range fields[:shown] {
		lines = append(lines, "  - "+formatField(f))
	}
	if len(fields) > shown {
		lines = append(lines, fmt.Sprintf("  ... and %d more %s", len(fields)-shown, label))
	}
	return lines
}

// formatField renders "**Name**(type, aggregation, generated, combined field) - description".
func formatField(f FieldInfo) string {
	var sb strings.Builder
	sb.WriteString("**" + orDefault(f.Name, "Unknown") + "**")
	sb.WriteString("(" + orDefault(f.DataType, "unknown"))

	if f.Aggregation != "" && f.Aggregation != "none" {
		sb.WriteString(", " + f.Aggregation)
	}
	if f.IsGenerated {
		sb.WriteString(", generated")
	}
	if f.IsCombinedField {
		sb.WriteString(", combined field")
	}
	sb.WriteString(")")

	if f.Description != "" {
		sb.WriteString(" - " + f.Description)
	}
	return sb.String()
}

// formatValue renders a decoded JSON scalar. Missing and null cells are empty.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		items := make([]string, len(val))
		for i, item := range val {
			items[i] = formatValue(item)
		}
		return strings.Join(items, ", ")
	default:
		return fmt.Sprint(val)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
