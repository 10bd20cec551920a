package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{" warn ", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"verbose", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithTarget(t *testing.T) {
	prev := Logger
	defer func() { Logger = prev }()

	tests := []struct {
		name  string
		port  int
		check func(t *testing.T, fields map[string]any)
	}{
		{
			name: "tcp",
			port: 443,
			check: func(t *testing.T, fields map[string]any) {
				assert.Equal(t, float64(443), fields["port"])
				assert.NotContains(t, fields, "method")
			},
		},
		{
			name: "icmp",
			port: 0,
			check: func(t *testing.T, fields map[string]any) {
				assert.Equal(t, "icmp", fields["method"])
				assert.NotContains(t, fields, "port")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Init(Config{Level: DebugLevel, JSONOutput: true, Output: &buf})

			logger := WithTarget("scheduler", "link-1", "nas.local", tt.port)
			logger.Info().Msg("hello")

			var fields map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
			assert.Equal(t, "scheduler", fields["component"])
			assert.Equal(t, "link-1", fields["target_id"])
			assert.Equal(t, "nas.local", fields["host"])
			tt.check(t, fields)
		})
	}
}
