package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"time"
)

// responseMeta はhttp.ResponseWriterをラップし、ステータスコードと送信バイト数を記録する。
type responseMeta struct {
	http.ResponseWriter
	status int
	bytes  int
}

// WriteHeader は最初に書き込まれたステータスコードを記録してから委譲する。
func (m *responseMeta) WriteHeader(code int) {
	if m.status == 0 {
		m.status = code
	}
	m.ResponseWriter.WriteHeader(code)
}

// Write はデータを書き込み、送信バイト数を加算する。
func (m *responseMeta) Write(b []byte) (int, error) {
	if m.status == 0 {
		m.status = http.StatusOK
	}
	n, err := m.ResponseWriter.Write(b)
	m.bytes += n
	return n, err
}

// NewLoggingMiddleware はリクエスト1件につきJSON構造化ログを1行出力するミドルウェアを返す。
// method、path、status、duration_ms、bytes、remote_addr、user_id（認証済みの場合）を記録する。
func NewLoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			meta := &responseMeta{ResponseWriter: w}
			next.ServeHTTP(meta, r)

			// ハンドラが何も書かなかった場合は200扱い
			if meta.status == 0 {
				meta.status = http.StatusOK
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", meta.status),
				slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000.0),
				slog.Int("bytes", meta.bytes),
				slog.String("remote_addr", clientAddr(r)),
			}

			// ユーザーIDがコンテキストにある場合は追加
			if userID, err := UserIDFromContext(r.Context()); err == nil && userID != "" {
				attrs = append(attrs, slog.String("user_id", userID))
			}

			logger.LogAttrs(r.Context(), levelForStatus(meta.status), "http_request", attrs...)
		})
	}
}

// levelForStatus はステータスコードに対応するログレベルを返す。
func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// clientAddr はリクエスト元のアドレスをポート部分を除いて返す。
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
