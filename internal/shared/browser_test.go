package shared

import (
	"slices"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	orig := getRuntime
	t.Cleanup(func() { getRuntime = orig })

	tc := []struct {
		goos    string
		want    []string
		wantErr bool
	}{
		{goos: "darwin", want: []string{"open", "http://127.0.0.1/preview/x"}},
		{goos: "linux", want: []string{"xdg-open", "http://127.0.0.1/preview/x"}},
		{goos: "windows", want: []string{"cmd", "/c", "start", "http://127.0.0.1/preview/x"}},
		{goos: "plan9", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			getRuntime = func() string { return tt.goos }
			got, err := browserCommand("http://127.0.0.1/preview/x")
			if tt.wantErr {
				if err == nil {
					t.Error("expected error for unsupported platform")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("browserCommand() = %v, want %v", got, tt.want)
			}
		})
	}
}
