package output

import (
	json "github.com/goccy/go-json"
)

// JSONFormatter renders the report as JSON, indented when Pretty is set
type JSONFormatter struct {
	Pretty bool
}

func (j JSONFormatter) Name() string {
	if j.Pretty {
		return "json"
	}
	return "json-compact"
}

func (j JSONFormatter) Format(report *Report) ([]byte, error) {
	if j.Pretty {
		return json.MarshalIndent(report, "", "  ")
	}
	return json.Marshal(report)
}
