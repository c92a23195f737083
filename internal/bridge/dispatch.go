package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/langbridge/internal/extapi"
)

type callConfig struct {
	doNotLog bool
}

type callOption func(*callConfig)

// quiet suppresses the invocation log of chatty calls.
func quiet() callOption {
	return func(c *callConfig) { c.doNotLog = true }
}

// withAdapter is the single dispatch path for wire calls.
//
// It looks up handle and checks that it belongs to an adapter of kind and
// type A. A missing or mismatched handle yields fallback. Otherwise fn runs
// on its own goroutine and withAdapter waits for it or for ctx, whichever
// comes first. fn keeps running after cancellation; its outcome is still
// logged.
func withAdapter[A adapter, R any](ctx context.Context, lf *LanguageFeatures, handle int, kind Kind, method string, fallback R, fn func(context.Context, A) (R, error), opts ...callOption) (R, error) {
	data, ok := lf.registry.get(handle)
	if !ok || data.adapter.kind() != kind {
		return fallback, nil
	}
	a, ok := data.adapter.(A)
	if !ok {
		return fallback, nil
	}

	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	logInvocation := lf.env.opts.logInvocations && !cfg.doNotLog

	type outcome struct {
		value R
		err   error
	}
	done := make(chan outcome, 1)
	requestID := uuid.NewString()
	start := time.Now()

	go func() {
		value, err := invoke(ctx, a, fn)
		done <- outcome{value: value, err: err}
		lf.observe(data.extension, method, requestID, time.Since(start), err, logInvocation)
	}()

	if err := ctx.Err(); err != nil {
		return fallback, cancelled(err)
	}

	select {
	case out := <-done:
		switch {
		case out.err == nil:
			return out.value, nil
		case IsUsageError(out.err):
			return fallback, out.err
		case IsCancellation(out.err):
			return fallback, cancelled(out.err)
		default:
			return fallback, nil
		}
	case <-ctx.Done():
		return fallback, cancelled(ctx.Err())
	}
}

// invoke runs fn, turning a panic into ErrProviderPanic.
func invoke[A adapter, R any](ctx context.Context, a A, fn func(context.Context, A) (R, error)) (value R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrProviderPanic, r)
		}
	}()
	return fn(ctx, a)
}

// observe logs the outcome of a provider call and reports failures.
func (lf *LanguageFeatures) observe(ext extapi.Extension, method, requestID string, took time.Duration, err error, logInvocation bool) {
	log := lf.log.WithField("request", requestID)
	switch {
	case err == nil:
		if logInvocation {
			log.Debug("[%s] provider invocation took %dms, %s", ext, took.Milliseconds(), method)
		}
	case IsCancellation(err):
		if logInvocation {
			log.Debug("[%s] provider cancelled after %dms, %s", ext, took.Milliseconds(), method)
		}
	case IsUsageError(err):
		log.Warn("[%s] invalid request, %s: %v", ext, method, err)
	default:
		log.Error("[%s] provider FAILED, %s: %v", ext, method, err)
		lf.telemetry.ReportProviderError(ProviderFailure{
			Extension: ext,
			Method:    method,
			RequestID: requestID,
			Duration:  took,
			Err:       err,
		})
	}
}
