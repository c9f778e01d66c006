package kit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestChainOrder(t *testing.T) {
	var calls []string
	mw := func(name string) Middleware {
		return func(next Endpoint) Endpoint {
			return func(ctx context.Context, req any) (any, error) {
				calls = append(calls, name)
				return next(ctx, req)
			}
		}
	}
	ep := Chain(mw("a"), mw("b"), mw("c"))(func(context.Context, any) (any, error) {
		calls = append(calls, "endpoint")
		return nil, nil
	})
	if _, err := ep(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(calls, ","); got != "a,b,c,endpoint" {
		t.Errorf("calls = %s", got)
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if GetTransport(ctx) != "http" {
		t.Errorf("default transport = %q", GetTransport(ctx))
	}
	ctx = WithTransport(WithRequestID(ctx, "req-1"), "mcp")
	if GetTransport(ctx) != "mcp" || GetRequestID(ctx) != "req-1" {
		t.Errorf("transport=%q request=%q", GetTransport(ctx), GetRequestID(ctx))
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ok := Logging(logger, "normalize")(func(context.Context, any) (any, error) { return "x", nil })
	ctx := WithRequestID(context.Background(), "abc")
	if resp, err := ok(ctx, nil); err != nil || resp != "x" {
		t.Fatalf("resp=%v err=%v", resp, err)
	}
	out := buf.String()
	for _, want := range []string{`"action":"normalize"`, `"request_id":"abc"`, `"transport":"http"`, `"level":"DEBUG"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log %s lacks %s", out, want)
		}
	}

	buf.Reset()
	boom := errors.New("boom")
	failing := Logging(logger, "variants")(func(context.Context, any) (any, error) { return nil, boom })
	if _, err := failing(context.Background(), nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if out := buf.String(); !strings.Contains(out, `"level":"WARN"`) || !strings.Contains(out, `"error":"boom"`) {
		t.Errorf("log %s lacks warning", out)
	}
}
