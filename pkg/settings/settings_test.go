package settings

import (
	"context"
	"testing"
)

func TestNewCliParams(t *testing.T) {
	tests := []struct {
		name string
		want *Run
	}{
		{
			name: "default CLI params",
			want: &Run{
				MinLogLevel: 0,
				IsQuiet:     false,
				NoColor:     false,
				ExitOnError: true,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewCliParams()
			if *got != *tt.want {
				t.Errorf("NewCliParams() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRunOverridesRoundTripContext(t *testing.T) {
	run := NewCliParams()
	run.Width = 120
	run.Currency = "EUR"
	run.DatabasePath = ":memory:"

	got, ok := FromContext(IntoContext(context.Background(), run))
	if !ok {
		t.Fatal("FromContext() found no settings")
	}
	if got.Width != 120 || got.Currency != "EUR" || got.DatabasePath != ":memory:" {
		t.Errorf("FromContext() = %+v", got)
	}
	if CliBinaryName != "cashbook" {
		t.Errorf("CliBinaryName = %q", CliBinaryName)
	}
}
