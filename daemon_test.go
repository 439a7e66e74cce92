package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfeifer.dev/velfilter/filter"
	"pfeifer.dev/velfilter/plan"
)

type queue struct {
	mu       sync.Mutex
	requests []plan.Request
}

func (q *queue) remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.requests)
}

func (q *queue) Read() (plan.Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.requests) == 0 {
		return plan.Request{}, false
	}
	req := q.requests[0]
	q.requests = q.requests[1:]
	return req, true
}

type sink struct {
	mu        sync.Mutex
	responses []plan.Response
	err       error
}

func (s *sink) Send(res plan.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, res)
	return s.err
}

func scenario(points ...filter.ObstaclePoint) plan.Scenario {
	return plan.Scenario{
		Ds:         1,
		InitialVel: 4,
		MaxAcc:     1,
		JerkAcc:    1,
		UpperBound: []float64{4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4},
		Obstacle:   &filter.Obstacle{ID: "lead", Points: points},
	}
}

func testDaemon(in *queue, out *sink) (*Daemon, *prometheus.Registry) {
	f := filter.New(filter.DefaultConfig(), nil)
	handler := plan.Handler{
		Run: func(ctx context.Context, sc plan.Scenario, order plan.Order) (plan.Result, error) {
			return plan.Run(ctx, f, sc, order)
		},
		Order: plan.SmoothThenLimit,
		NewID: func() string { return "generated" },
	}
	reg := prometheus.NewRegistry()
	return NewDaemon(handler, in, out, time.Millisecond, reg), reg
}

func TestDaemonStep(t *testing.T) {
	crossing := scenario(
		filter.ObstaclePoint{S: 4, T: 1}, filter.ObstaclePoint{S: 5, T: 1.5},
		filter.ObstaclePoint{S: 6, T: 2}, filter.ObstaclePoint{S: 7, T: 2.5},
	)
	in := &queue{requests: []plan.Request{
		{ID: "a", Scenario: crossing},
		{Scenario: scenario(filter.ObstaclePoint{S: 4.5, T: 1})},
		{ID: "c", Scenario: plan.Scenario{Ds: 1, MaxAcc: 1, UpperBound: []float64{1}}},
	}}
	out := &sink{}
	d, _ := testDaemon(in, out)

	for range 3 {
		assert.True(t, d.Step(context.Background()))
	}
	assert.False(t, d.Step(context.Background()))

	require.Len(t, out.responses, 3)
	assert.Equal(t, "a", out.responses[0].ID)
	require.NotNil(t, out.responses[0].Result)
	assert.InDeltaSlice(t, []float64{4, 4, 2.5, 2.5, 2.5, 2, 2, 2, 4, 4, 0}, out.responses[0].Result.FinalVel, 1e-9)

	assert.Equal(t, "generated", out.responses[1].ID)
	require.NotNil(t, out.responses[1].Result)
	assert.True(t, out.responses[1].Result.Fallback)

	assert.Equal(t, "c", out.responses[2].ID)
	assert.Nil(t, out.responses[2].Result)
	assert.NotEmpty(t, out.responses[2].Error)

	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.requests.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.requests.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.requests.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.fallbacks))
}

func TestDaemonStepSendFailure(t *testing.T) {
	in := &queue{requests: []plan.Request{{ID: "a", Scenario: scenario(filter.ObstaclePoint{S: 4.5, T: 1})}}}
	out := &sink{err: errors.New("socket closed")}
	d, _ := testDaemon(in, out)

	assert.True(t, d.Step(context.Background()))
	assert.Len(t, out.responses, 1)
}

func TestDaemonLoopStopsWithContext(t *testing.T) {
	in := &queue{requests: []plan.Request{{ID: "a", Scenario: scenario(filter.ObstaclePoint{S: 4.5, T: 1})}}}
	out := &sink{}
	d, _ := testDaemon(in, out)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error)
	go func() { done <- d.Loop(ctx) }()

	require.Eventually(t, func() bool { return in.remaining() == 0 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	assert.Len(t, out.responses, 1)
}

func TestServeMetrics(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	_, reg := testDaemon(&queue{}, &sink{})
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		serveMetrics(ctx, addr, reg)
		close(stopped)
	}()

	var body string
	require.Eventually(t, func() bool {
		res, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		body = string(data)
		return err == nil && res.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, body, "velocity_filter_request_duration_seconds")

	cancel()
	<-stopped
}
