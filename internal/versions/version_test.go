package versions

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
		want      Info
	}{
		{
			name:      "release build",
			version:   "v1.4.0",
			commit:    "0123456789abcdef",
			buildDate: "2025-01-15T10:30:00Z",
			want: Info{
				Version:   "v1.4.0",
				Commit:    "0123456789abcdef",
				BuildDate: "2025-01-15 10:30:00 UTC",
			},
		},
		{
			name:      "dev build uses a short commit",
			version:   "dev",
			commit:    "0123456789abcdef",
			buildDate: unknown,
			want: Info{
				Version:   "build-01234567",
				Commit:    "0123456789abcdef",
				BuildDate: unknown,
			},
		},
		{
			name:      "unparseable date is kept",
			version:   "v1.0.0",
			commit:    unknown,
			buildDate: "yesterday",
			want: Info{
				Version:   "v1.0.0",
				Commit:    unknown,
				BuildDate: "yesterday",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := resolve(tt.version, tt.commit, tt.buildDate)
			tt.want.GoVersion = runtime.Version()
			tt.want.Platform = runtime.GOOS + "/" + runtime.GOARCH
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetVersionInfo(t *testing.T) {
	t.Parallel()

	info := GetVersionInfo()
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}
