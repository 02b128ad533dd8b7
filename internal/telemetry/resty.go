package telemetry

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

type reqCtxKeyType int

var reqCtxKey reqCtxKeyType

type reqCtx struct {
	id        uint64
	startTime time.Time
}

type instrumentResty struct {
	name      string
	idcounter *uint64
}

// InstrumentResty logs the lifecycle of every request made by client:
// start and completion at debug level, transport failures at error level.
func InstrumentResty(client *resty.Client, name string) {
	var idcounter uint64
	i := instrumentResty{name: name, idcounter: &idcounter}

	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
}

func (i instrumentResty) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	id := atomic.AddUint64(i.idcounter, 1)
	ctx := context.WithValue(req.Context(), reqCtxKey, reqCtx{
		id:        id,
		startTime: time.Now(),
	})
	slog.DebugContext(ctx, "start request",
		"client", i.name,
		"request_id", id,
		"method", req.Method,
		"url", req.URL,
	)

	req.SetContext(ctx)
	return nil
}

func (i instrumentResty) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	rc, _ := ctx.Value(reqCtxKey).(reqCtx)

	slog.DebugContext(ctx, "request finished",
		"client", i.name,
		"request_id", rc.id,
		"method", res.Request.Method,
		"url", res.Request.URL,
		"status", res.StatusCode(),
		"bytes", len(res.Body()),
		"duration", time.Since(rc.startTime).String(),
	)
	return nil
}

func (i instrumentResty) onError(req *resty.Request, err error) {
	ctx := req.Context()
	rc, _ := ctx.Value(reqCtxKey).(reqCtx)

	attrs := []any{
		"client", i.name,
		"method", req.Method,
		"url", req.URL,
		"error", err,
	}
	if rc.id != 0 {
		attrs = append(attrs, "request_id", rc.id, "duration", time.Since(rc.startTime).String())
	}
	slog.ErrorContext(ctx, "request failed", attrs...)
}
