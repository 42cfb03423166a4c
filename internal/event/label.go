package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Label is a label attached to a change. Payloads carry labels either as
// plain strings or as records with a "name" field; both decode to Name.
type Label struct {
	Name string
}

func (l *Label) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &l.Name)
	}

	var record struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("label must be a string or an object with a name: %w", err)
	}
	if record.Name == nil {
		return fmt.Errorf("label object has no name")
	}
	l.Name = *record.Name
	return nil
}

// LabelNames returns the trimmed, non-empty label names.
func LabelNames(labels []Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		if name := strings.TrimSpace(l.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
