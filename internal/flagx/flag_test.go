package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		allowed   []string
		boolFlags []string
		want      []string
	}{
		{
			name:    "short flag with separate value",
			args:    []string{"-c", "conf.json", "-a", "localhost"},
			allowed: []string{"-c", "--config"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "long flag with equals",
			args:    []string{"--config=alt.json", "-a", "localhost"},
			allowed: []string{"-c", "--config"},
			want:    []string{"--config=alt.json"},
		},
		{
			name:    "unknown flags and positionals ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag followed by another flag has no value",
			args:    []string{"-c", "-d", "dsn"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:      "bool flag never swallows the next token",
			args:      []string{"-m", "extra", "-a", ":5000"},
			allowed:   []string{"-a"},
			boolFlags: []string{"-m"},
			want:      []string{"-m", "-a", ":5000"},
		},
		{
			name:      "bool flag with explicit value",
			args:      []string{"-m=false"},
			boolFlags: []string{"-m"},
			want:      []string{"-m=false"},
		},
		{
			name:    "empty args",
			args:    []string{},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed, tt.boolFlags...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "conf.json", ConfigPath([]string{"-a", ":5000", "-c", "conf.json"}))
	assert.Equal(t, "alt.json", ConfigPath([]string{"-config=alt.json"}))
	assert.Equal(t, "", ConfigPath([]string{"-a", ":5000"}))
}
