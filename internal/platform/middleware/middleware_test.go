package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestContext(method, target string, header http.Header) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequestID_Generated(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/", nil)

	var seen string
	h := RequestID()(func(c echo.Context) error {
		seen = requestID(c)
		return okHandler(c)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen == "" {
		t.Error("expected a generated request id in the context")
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header %q does not match context id %q", rec.Header().Get(RequestIDHeader), seen)
	}
}

func TestRequestID_CallerSupplied(t *testing.T) {
	hdr := http.Header{}
	hdr.Set(RequestIDHeader, "caller-id-1")
	c, rec := newTestContext(http.MethodGet, "/", hdr)

	h := RequestID()(okHandler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "caller-id-1" {
		t.Errorf("expected the caller's id to be preserved, got %q", got)
	}
}

func TestLogger_EmitsRequestLine(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	c, _ := newTestContext(http.MethodGet, "/hospitals?region=north", nil)

	h := Logger(logger)(okHandler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	line := buf.String()
	for _, want := range []string{`"method":"GET"`, `"uri":"/hospitals?region=north"`, `"status":200`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %s: %s", want, line)
		}
	}
}

func TestLogger_HandlerErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	c, _ := newTestContext(http.MethodGet, "/missing", nil)

	h := Logger(logger)(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})
	if err := h(c); err == nil {
		t.Fatal("expected the handler error to be passed through")
	}
	if !strings.Contains(buf.String(), `"status":404`) {
		t.Errorf("expected the error status in the log line: %s", buf.String())
	}
}

func TestRecovery_ConvertsPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	c, _ := newTestContext(http.MethodGet, "/boom", nil)

	h := Recovery(logger)(func(c echo.Context) error {
		panic("boom")
	})
	err := h(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusInternalServerError {
		t.Fatalf("expected a 500 from the recovered panic, got %v", err)
	}
	if !strings.Contains(buf.String(), "handler panicked") {
		t.Errorf("expected the panic to be logged: %s", buf.String())
	}
}

func TestRecovery_NoPanicPassesThrough(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/", nil)

	h := Recovery(zerolog.Nop())(okHandler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
