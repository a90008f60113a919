package summarize

// SystemInstruction opens every prompt unless the caller overrides it.
const SystemInstruction = `You are a business intelligence analyst. Analyze this Tableau dashboard and provide a concise, actionable summary.

Focus on:
- Key trends and patterns
- Notable insights or anomalies
- Use field definitions and descriptions to provide context-aware interpretations

Format: Follow any instructions in Business Context section, otherwise use clear bullet points. Be concise and business-friendly.`

const (
	headerDashboard       = "\n## Dashboard Context"
	headerFilters         = "\n### Active Filters:"
	headerBusinessContext = "\n### Business Context (IMPORTANT - Follow any instructions provided here):"
	headerDatasources     = "\n## Datasource Information"
	headerSheets          = "\n## Data from Selected Sheets:"
	headerSampleCSV       = "\nSample Data (CSV format):"
	headerSampleMarkdown  = "\nSample Data (Markdown table):"
)
