package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "30d", want: 30 * 24 * time.Hour},
		{in: "1d", want: 24 * time.Hour},
		{in: "90m", want: 90 * time.Minute},
		{in: " 2h ", want: 2 * time.Hour},
		{in: "xd", wantErr: true},
		{in: "-1d", wantErr: true},
		{in: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var cfg struct {
		A Duration `json:"a"`
		B Duration `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"30d","b":1000000000}`), &cfg))
	assert.Equal(t, 30*24*time.Hour, cfg.A.Duration)
	assert.Equal(t, time.Second, cfg.B.Duration)

	var bad Duration
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}
