// Package config はプラグインの設定管理を行います
//
// 設定ファイルは環境変数 NFA0_CONFIG で指定した YAML ファイル 1 つだけです。
// 未指定なら既定値を使います。
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shiroemons/go-nemea/pkg/nfa0"
)

const (
	// Name はホストへ公開するプラグイン名
	Name = "Nemea NFA0"

	// Version はホストへ公開するプラグインのバージョン
	Version = "1.0.0"

	// EnvVar は設定ファイルのパスを指定する環境変数
	EnvVar = "NFA0_CONFIG"
)

var (
	// ErrNoExtensions は拡張子が 1 つもない場合のエラー
	ErrNoExtensions = errors.New("拡張子が指定されていません")

	// ErrInvalidExtension は拡張子に使えない文字が含まれる場合のエラー
	ErrInvalidExtension = errors.New("無効な拡張子です")

	// ErrInvalidLogLevel はログレベルが不明な場合のエラー
	ErrInvalidLogLevel = errors.New("無効なログレベルです")
)

// Config はプラグインの設定を保持します
type Config struct {
	// Extensions は CanHandleFile が受け付ける拡張子 (先頭のドットは省略可)
	Extensions []string `yaml:"extensions"`

	// LogLevel は debug, info, warn, error のいずれか
	LogLevel string `yaml:"log_level"`

	// MaxEntries はインデックスのエントリ数の上限。0 なら無制限
	MaxEntries uint32 `yaml:"max_entries"`
}

// Default は既定の設定を返します
func Default() *Config {
	return &Config{
		Extensions: append([]string(nil), nfa0.DefaultExtensions...),
		LogLevel:   "info",
	}
}

// Load は NFA0_CONFIG が指すファイルを読み込みます。未設定なら既定値を返します
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile は YAML ファイルを既定値の上に読み込んで検証します
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("設定ファイルの解析に失敗しました %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定ファイルが不正です %s: %w", path, err)
	}
	return cfg, nil
}

// Validate は設定値を検証します
func (c *Config) Validate() error {
	if len(c.Extensions) == 0 {
		return ErrNoExtensions
	}
	for _, ext := range c.Extensions {
		e := strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if e == "" || strings.ContainsAny(e, "./\\\x00") {
			return fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
		}
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level は slog のレベルを返します。不明な値は info として扱います
func (c *Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// FormatOptions は NFA0 形式のオプションを作成します
func (c *Config) FormatOptions(logger *slog.Logger) nfa0.Options {
	return nfa0.Options{
		Extensions: append([]string(nil), c.Extensions...),
		MaxEntries: c.MaxEntries,
		Logger:     logger,
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
	}
}
