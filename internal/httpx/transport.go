package httpx

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sensitiveParams are query parameter names redacted before logging.
var sensitiveParams = []string{
	"auth",
	"access_token",
	"token",
	"secret",
}

// loggingTransport logs every round trip with a sanitized URL.
type loggingTransport struct {
	base   http.RoundTripper
	logger *zap.Logger
}

func newLoggingTransport(base http.RoundTripper, logger *zap.Logger) *loggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if lt, ok := base.(*loggingTransport); ok {
		base = lt.base
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &loggingTransport{base: base, logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", sanitizeURL(req.URL)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	}

	if err != nil {
		t.logger.Warn("http request failed", append(fields, zap.Error(err))...)
		return resp, err
	}

	level := zapcore.DebugLevel
	if resp.StatusCode >= 400 {
		level = zapcore.WarnLevel
	}
	if ce := t.logger.Check(level, "http request"); ce != nil {
		ce.Write(append(fields, zap.Int("status", resp.StatusCode))...)
	}
	return resp, nil
}

// sanitizeURL redacts credential-bearing query parameters.
func sanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	for param := range q {
		if isSensitiveParam(param) {
			q.Set(param, "[REDACTED]")
		}
	}
	safe := *u
	safe.RawQuery = q.Encode()
	return safe.String()
}

func isSensitiveParam(param string) bool {
	lower := strings.ToLower(param)
	for _, sensitive := range sensitiveParams {
		if lower == sensitive {
			return true
		}
	}
	return false
}
