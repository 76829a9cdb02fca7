package mocks

import (
	"sync"

	"github.com/shiroemons/go-nemea/internal/hostlog"
)

// SinkRecord は MockSink が受け取った 1 回分のログ呼び出し
type SinkRecord struct {
	Level  hostlog.Level
	Format string // Log の場合は空
	Args   []hostlog.Arg
	Text   string // ホストが表示する文字列
}

// MockSink はホストのログコールバックのモック
type MockSink struct {
	mu      sync.Mutex
	Records []SinkRecord
}

// Log はテキストをそのまま記録します
func (s *MockSink) Log(level hostlog.Level, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, SinkRecord{Level: level, Text: msg})
}

// LogFmt はフォーマットと引数を記録し、ホストと同じ規則で展開した文字列も保存します
func (s *MockSink) LogFmt(level hostlog.Level, format string, args []hostlog.Arg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, SinkRecord{
		Level:  level,
		Format: format,
		Args:   append([]hostlog.Arg(nil), args...),
		Text:   hostlog.Render(format, args),
	})
}

// Last は最後の記録を返します。記録がなければ false を返します
func (s *MockSink) Last() (SinkRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Records) == 0 {
		return SinkRecord{}, false
	}
	return s.Records[len(s.Records)-1], true
}

// Texts は記録された表示文字列を順に返します
func (s *MockSink) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Text
	}
	return out
}
