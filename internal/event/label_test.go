package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel_UnmarshalJSON(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    []string
		wantErr bool
	}{
		"strings":        {input: `["bug","feature"]`, want: []string{"bug", "feature"}},
		"records":        {input: `[{"name":"bug","id":1},{"name":"docs"}]`, want: []string{"bug", "docs"}},
		"mixed":          {input: `["bug",{"name":"type: feat"}]`, want: []string{"bug", "type: feat"}},
		"blank dropped":  {input: `["", {"name":" "}, "fix"]`, want: []string{"fix"}},
		"null entry":     {input: `[null,"fix"]`, want: []string{"fix"}},
		"number":         {input: `[7]`, wantErr: true},
		"record no name": {input: `[{"id":3}]`, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var labels []Label
			err := json.Unmarshal([]byte(tt.input), &labels)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, LabelNames(labels))
		})
	}
}
