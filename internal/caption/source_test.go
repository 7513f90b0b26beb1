package caption

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceFor(t *testing.T) {
	assert.IsType(t, &HTTPSource{}, SourceFor("https://example.com/intro.cap"))
	assert.IsType(t, &HTTPSource{}, SourceFor("http://localhost/x"))
	assert.IsType(t, FileSource{}, SourceFor("scripts/intro.cap"))
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intro.cap")
	require.NoError(t, os.WriteFile(path, []byte("cap hi\n"), 0o644))

	text, err := FileSource{Path: path}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cap hi\n", text)

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.cap")}.Fetch(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInlineSourceHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := InlineSource("cap hi").Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSourceStatuses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantErr     bool
		unavailable bool
	}{
		{"ok", http.StatusOK, false, false},
		{"service unavailable", http.StatusServiceUnavailable, true, true},
		{"not found", http.StatusNotFound, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("wait 10"))
			}))
			defer srv.Close()

			text, err := NewHTTPSource(srv.URL).Fetch(context.Background())
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "wait 10", text)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.unavailable, errors.Is(err, ErrSourceUnavailable))
		})
	}
}

func TestDescribeSource(t *testing.T) {
	assert.Equal(t, "scripts/intro.cap", DescribeSource(FileSource{Path: "scripts/intro.cap"}))
	assert.Equal(t, "https://example.com/a.cap", DescribeSource(NewHTTPSource("https://example.com/a.cap")))
	assert.Equal(t, "inline script", DescribeSource(InlineSource("cap hi")))
}
