package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nfa0.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{"bin"}, cfg.Extensions)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, uint32(0), cfg.MaxEntries)
	assert.NoError(t, cfg.Validate())

	// 既定値のスライスは共有しない
	cfg.Extensions[0] = "dat"
	assert.Equal(t, []string{"bin"}, Default().Extensions)
}

func TestLoad(t *testing.T) {
	t.Run("環境変数なし", func(t *testing.T) {
		t.Setenv(EnvVar, "")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("環境変数あり", func(t *testing.T) {
		t.Setenv(EnvVar, writeConfig(t, "log_level: debug\n"))
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, []string{"bin"}, cfg.Extensions)
	})

	t.Run("存在しないファイル", func(t *testing.T) {
		t.Setenv(EnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := Load()
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    *Config
		wantErr error
		anyErr  bool
	}{
		{
			name: "空のファイル",
			body: "",
			want: Default(),
		},
		{
			name: "すべて指定",
			body: "extensions: [bin, .nfa]\nlog_level: warn\nmax_entries: 4096\n",
			want: &Config{Extensions: []string{"bin", ".nfa"}, LogLevel: "warn", MaxEntries: 4096},
		},
		{
			name:    "拡張子が空",
			body:    "extensions: []\n",
			wantErr: ErrNoExtensions,
		},
		{
			name:    "パス区切りを含む拡張子",
			body:    "extensions: [a/b]\n",
			wantErr: ErrInvalidExtension,
		},
		{
			name:    "ドットだけの拡張子",
			body:    "extensions: [\".\"]\n",
			wantErr: ErrInvalidExtension,
		},
		{
			name:    "二重拡張子",
			body:    "extensions: [tar.bin]\n",
			wantErr: ErrInvalidExtension,
		},
		{
			name:    "不明なログレベル",
			body:    "log_level: verbose\n",
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:   "不明なキー",
			body:   "extension: [bin]\n",
			anyErr: true,
		},
		{
			name:   "型違い",
			body:   "max_entries: -1\n",
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFile(writeConfig(t, tt.body))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, cfg)
			case tt.anyErr:
				assert.Error(t, err)
				assert.Nil(t, cfg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, cfg)
			}
		})
	}
}

func TestConfig_Level(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.in}
			assert.Equal(t, tt.want, cfg.Level())
		})
	}
}

func TestConfig_FormatOptions(t *testing.T) {
	cfg := &Config{Extensions: []string{"bin", "nfa"}, MaxEntries: 10}
	logger := slog.Default()

	opts := cfg.FormatOptions(logger)
	assert.Equal(t, []string{"bin", "nfa"}, opts.Extensions)
	assert.Equal(t, uint32(10), opts.MaxEntries)
	assert.Same(t, logger, opts.Logger)

	opts.Extensions[0] = "dat"
	assert.Equal(t, "bin", cfg.Extensions[0])
}
