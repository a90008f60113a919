package summarize

import (
	"context"
	"fmt"
)

type SheetData struct {
	Name          string           `json:"name"`
	Columns       []string         `json:"columns"`
	Data          []map[string]any `json:"data"`
	TotalRows     *int             `json:"totalRows,omitempty"`
	IsSummaryData *bool            `json:"isSummaryData,omitempty"`
}

type FilterInfo struct {
	Worksheet string `json:"worksheet,omitempty"`
	Field     string `json:"field"`
	Type      string `json:"type,omitempty"`
	Value     any    `json:"value"`
}

type Metadata struct {
	DashboardName string       `json:"dashboard_name"`
	Filters       []FilterInfo `json:"filters,omitempty"`
}

type FieldRole string

const (
	RoleDimension FieldRole = "dimension"
	RoleMeasure   FieldRole = "measure"
)

type FieldInfo struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Role            FieldRole `json:"role"`
	DataType        string    `json:"dataType"`
	Aggregation     string    `json:"aggregation,omitempty"`
	IsHidden        bool      `json:"isHidden,omitempty"`
	IsCombinedField bool      `json:"isCombinedField,omitempty"`
	IsGenerated     bool      `json:"isGenerated,omitempty"`
}

type TableInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DatasourceInfo struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	ConnectionName    string      `json:"connectionName,omitempty"`
	IsExtract         bool        `json:"isExtract"`
	ExtractUpdateTime string      `json:"extractUpdateTime,omitempty"`
	Fields            []FieldInfo `json:"fields"`
	Tables            []TableInfo `json:"tables,omitempty"`
}

// Request is the summarization payload sent by the dashboard extension.
type Request struct {
	Sheets       []SheetData      `json:"sheets_data"`
	Metadata     Metadata         `json:"metadata"`
	Datasources  []DatasourceInfo `json:"datasources,omitempty"`
	Context      string           `json:"context,omitempty"`
	SystemPrompt *string          `json:"system_prompt,omitempty"`
}

// Validate checks the invariants the prompt builder relies on.
func (r *Request) Validate() error {
	for i, ds := range r.Datasources {
		for _, f := range ds.Fields {
			if f.Role != RoleDimension && f.Role != RoleMeasure {
				return fmt.Errorf("datasources[%d]: field %q has invalid role %q (want dimension or measure)", i, f.Name, f.Role)
			}
		}
	}
	return nil
}

type Response struct {
	Success   bool   `json:"success"`
	Summary   string `json:"summary,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

type TestPromptResponse struct {
	Success bool   `json:"success"`
	Prompt  string `json:"prompt,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Service turns dashboard data into a summary.
type Service interface {
	Summarize(ctx context.Context, req Request) (string, error)
	BuildPrompt(req Request) string
}
