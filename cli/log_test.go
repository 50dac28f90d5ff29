package cli

import (
	"testing"

	"github.com/ardnew/blockcfg/log"
)

func TestLogConfigScan(t *testing.T) {
	prev := log.Default()
	t.Cleanup(func() { log.SetDefault(prev) })

	base := logConfig{Level: "info", Format: "text", Time: "rfc3339", Pretty: true}

	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "assigned",
			args: []string{"--log-level=debug", "--log-format=json"},
			want: logConfig{Level: "debug", Format: "json", Time: "rfc3339", Pretty: true},
		},
		{
			name: "separate value",
			args: []string{"dump", "--log-level", "warn", "--log-time", "kitchen", "app.conf"},
			want: logConfig{Level: "warn", Format: "text", Time: "kitchen", Pretty: true},
		},
		{
			name: "booleans",
			args: []string{"--log-caller", "--no-log-pretty"},
			want: logConfig{Level: "info", Format: "text", Time: "rfc3339", Caller: true},
		},
		{
			name: "assigned boolean",
			args: []string{"--log-caller=false", "--log-pretty=false"},
			want: logConfig{Level: "info", Format: "text", Time: "rfc3339"},
		},
		{
			name: "stops at terminator",
			args: []string{"--", "--log-level=error"},
			want: base,
		},
		{
			name: "ignores other flags",
			args: []string{"--logging=trace", "--format=json"},
			want: base,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base
			got.scan(tt.args)

			if got != tt.want {
				t.Errorf("scan(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}
