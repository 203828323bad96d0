package shutdown

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/osbdet/osbdetweb/environment"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStopper struct {
	calls  atomic.Int32
	result environment.ActionResult
	err    error
}

func (f *fakeStopper) Stop(ctx context.Context) (environment.ActionResult, error) {
	f.calls.Add(1)
	return f.result, f.err
}

func newTestControl(stopper Stopper) (*Control, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewControl(stopper, zerolog.New(&buf), prometheus.NewRegistry()), &buf
}

func TestRequestSuccess(t *testing.T) {
	stopper := &fakeStopper{result: environment.ActionResult{Status: 0, Output: ""}}
	control, logs := newTestControl(stopper)

	result := control.Request(context.Background())

	assert.Equal(t, int32(1), stopper.calls.Load())
	assert.True(t, result.Succeeded())
	assert.Contains(t, logs.String(), `"message":"Environment stopped"`)
	assert.Contains(t, logs.String(), `"level":"info"`)
	assert.Equal(t, 1.0, testutil.ToFloat64(control.requests.WithLabelValues("success")))
}

func TestRequestFailure(t *testing.T) {
	stopper := &fakeStopper{result: environment.ActionResult{Status: 1, Output: "permission denied"}}
	control, logs := newTestControl(stopper)

	result := control.Request(context.Background())

	assert.Equal(t, int32(1), stopper.calls.Load())
	assert.Equal(t, 1, result.Status)
	assert.Contains(t, logs.String(), "ERROR: unable to stop OSBDET - permission denied")
	assert.Contains(t, logs.String(), `"level":"error"`)
	assert.NotContains(t, logs.String(), "Environment stopped")
	assert.Equal(t, 1.0, testutil.ToFloat64(control.requests.WithLabelValues("failure")))
}

func TestRequestActionError(t *testing.T) {
	stopper := &fakeStopper{err: errors.New("connection refused")}
	control, logs := newTestControl(stopper)

	result := control.Request(context.Background())

	assert.Equal(t, -1, result.Status)
	assert.Equal(t, "connection refused", result.Output)
	assert.Contains(t, logs.String(), "ERROR: unable to stop OSBDET - connection refused")
}

func TestRequestConcurrent(t *testing.T) {
	stopper := &fakeStopper{}
	control := NewControl(stopper, zerolog.Nop(), prometheus.NewRegistry())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			control.Request(context.Background())
		}()
	}
	wg.Wait()

	require.Equal(t, int32(10), stopper.calls.Load())
	assert.Equal(t, 10.0, testutil.ToFloat64(control.requests.WithLabelValues("success")))
}

func TestNewControlWithoutRegisterer(t *testing.T) {
	stopper := &fakeStopper{}
	control := NewControl(stopper, zerolog.Nop(), nil)

	assert.True(t, control.Request(context.Background()).Succeeded())
}
