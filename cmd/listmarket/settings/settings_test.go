package settings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Duration
		wantErr bool
	}{
		{name: "unset keeps default", value: "", want: time.Minute},
		{name: "parsed", value: "30s", want: 30 * time.Second},
		{name: "disabled", value: "0s", want: 0},
		{name: "garbage keeps default", value: "soon", want: time.Minute, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("POLL_INTERVAL", tt.value)
			d := time.Minute
			err := durationFromEnv("POLL_INTERVAL", &d)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "POLL_INTERVAL")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, d)
		})
	}
}
