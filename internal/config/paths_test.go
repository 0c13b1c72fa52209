package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths_TutorHome(t *testing.T) {
	base := t.TempDir()
	t.Setenv("TUTOR_HOME", base)

	p, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, base, p.Base)
	assert.Equal(t, filepath.Join(base, "config.yaml"), p.Config)
	assert.Equal(t, filepath.Join(base, "data"), p.Data)
}

func TestResolvePaths_Default(t *testing.T) {
	t.Setenv("TUTOR_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	p, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".tutor"), p.Base)
}

func TestEnsureDirs(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", ".tutor")
	p := Paths{Base: base, Config: filepath.Join(base, "config.yaml"), Data: filepath.Join(base, "data")}

	require.NoError(t, p.EnsureDirs())
	info, err := os.Stat(p.Data)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResolveSQLitePath(t *testing.T) {
	p := Paths{Data: "/home/u/.tutor/data"}
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{":memory:", ":memory:"},
		{"file::memory:?cache=shared", "file::memory:?cache=shared"},
		{"/var/lib/tutor.db", "/var/lib/tutor.db"},
		{"sessions.db", "/home/u/.tutor/data/sessions.db"},
		{"db/sessions.db", "/home/u/.tutor/data/db/sessions.db"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ResolveSQLitePath(tt.in))
		})
	}
}

func TestParseConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"single segment", "server", []string{"server"}, false},
		{"two segments", "server.port", []string{"server", "port"}, false},
		{"three segments", "session.redis.addr", []string{"session", "redis", "addr"}, false},
		{"empty", "", nil, true},
		{"empty segment", "server..port", nil, true},
		{"leading dot", ".server", nil, true},
		{"trailing dot", "server.", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfigPath(tt.input)
			if tt.wantErr {
				var ce *ConfigError
				assert.ErrorAs(t, err, &ce)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestGetValueAtPath(t *testing.T) {
	root := map[string]any{
		"session": map[string]any{
			"window": 30,
			"redis":  map[string]any{"addr": "localhost:6379"},
		},
		"simple": "value",
	}

	tests := []struct {
		path []string
		want any
		ok   bool
	}{
		{[]string{"session", "window"}, 30, true},
		{[]string{"session", "redis", "addr"}, "localhost:6379", true},
		{[]string{"simple"}, "value", true},
		{[]string{"missing"}, nil, false},
		{[]string{"simple", "deeper"}, nil, false},
	}

	for _, tt := range tests {
		val, ok := GetValueAtPath(root, tt.path)
		assert.Equal(t, tt.ok, ok)
		if tt.ok {
			assert.Equal(t, tt.want, val)
		}
	}
}
