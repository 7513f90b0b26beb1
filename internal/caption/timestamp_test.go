package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		token string
		want  int64
		ok    bool
	}{
		{"0", 0, true},
		{"1500", 1500, true},
		{"01:02", 62_000, true},
		{"1:00:00", 3_600_000, true},
		{"00:01.5", 1500, true},
		{"00:01.05", 1050, true},
		{"00:01.123", 1123, true},
		{"00:61", 0, false},
		{"-100", 0, false},
		{"12:3a", 0, false},
		{"cap", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.token)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
