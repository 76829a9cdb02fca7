package hostlog

import "strings"

// Render はホストの rd_log_fmtv と同じ規則で format に args を埋め込みます。
//
// "{}" は次の引数、"{{" と "}}" はそれぞれ "{" と "}" になります。"{name}" のように
// 中身のある括弧はそのまま残し、引数が足りなければ "<missing arg>" を出力します。
func Render(format string, args []Arg) string {
	var b strings.Builder
	b.Grow(len(format) + 16)

	next := 0
	for i := 0; i < len(format); i++ {
		ch := format[i]
		switch ch {
		case '{':
			if i+1 < len(format) && format[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := -1
			for j := i + 1; j < len(format); j++ {
				if format[j] == '}' {
					end = j
					break
				}
				if format[j] == '{' {
					break
				}
			}
			if end < 0 {
				b.WriteByte('{')
				continue
			}
			if end == i+1 {
				if next < len(args) {
					b.WriteString(args[next].Format())
					next++
				} else {
					b.WriteString("<missing arg>")
				}
			} else {
				b.WriteString(format[i : end+1])
			}
			i = end
		case '}':
			if i+1 < len(format) && format[i+1] == '}' {
				i++
			}
			b.WriteByte('}')
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
