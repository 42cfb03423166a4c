package scope

import (
	"context"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFrom(files map[string]string) ReadFunc {
	return func(_ context.Context, path string) ([]byte, error) {
		content, ok := files[path]
		if !ok {
			return nil, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
		}
		return []byte(content), nil
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		files   map[string]string
		want    []string
		wantErr bool
	}{
		"pnpm workspace": {
			files: map[string]string{PnpmWorkspaceFile: "packages:\n  - 'packages/*'\n  - apps/**\n  - '!**/test/**'\n"},
			want:  []string{"packages/*", "apps/**", "!**/test/**"},
		},
		"package.json array": {
			files: map[string]string{PackageJSONFile: `{"name":"root","workspaces":["packages/*"]}`},
			want:  []string{"packages/*"},
		},
		"package.json object": {
			files: map[string]string{PackageJSONFile: `{"workspaces":{"packages":["apps/*"],"nohoist":["**/react"]}}`},
			want:  []string{"apps/*"},
		},
		"package.json without workspaces": {
			files: map[string]string{PackageJSONFile: `{"name":"single"}`},
		},
		"lerna": {
			files: map[string]string{LernaFile: `{"packages":["modules/*"],"version":"independent"}`},
			want:  []string{"modules/*"},
		},
		"merged and deduplicated": {
			files: map[string]string{
				PnpmWorkspaceFile: "packages: [packages/*]\n",
				PackageJSONFile:   `{"workspaces":["packages/*","tools/*"]}`,
			},
			want: []string{"packages/*", "tools/*"},
		},
		"nothing found": {
			files: map[string]string{},
		},
		"malformed yaml": {
			files:   map[string]string{PnpmWorkspaceFile: "packages: [unclosed\n"},
			wantErr: true,
		},
		"malformed workspaces": {
			files:   map[string]string{PackageJSONFile: `{"workspaces":42}`},
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := Discover(context.Background(), readFrom(tt.files))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiscover_ReadError(t *testing.T) {
	t.Parallel()

	read := func(context.Context, string) ([]byte, error) {
		return nil, fmt.Errorf("network down")
	}
	_, err := Discover(context.Background(), read)
	require.Error(t, err)
	assert.Contains(t, err.Error(), PnpmWorkspaceFile)
}
