package generate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckforge/deckforge/generate"
	"github.com/deckforge/deckforge/llm"
	"github.com/deckforge/deckforge/llm/testutil"
	"github.com/deckforge/deckforge/ratelimit"
	"github.com/deckforge/deckforge/stats"
)

const validSlideJSON = `{
	"bullets": [
		"Accelerate digital care delivery",
		"Reduce administrative overhead significantly",
		"Improve patient outcome tracking",
		"Enable data driven decisions"
	],
	"key_message": "Technology transforms care delivery"
}`

func newLimiter(t *testing.T, capacity int) *ratelimit.Manager {
	t.Helper()
	m, err := ratelimit.NewManager(ratelimit.Config{Capacity: capacity, Window: time.Minute})
	require.NoError(t, err)
	return m
}

func TestGateway_Success(t *testing.T) {
	mock := &testutil.MockCompleter{
		Responses: []*llm.Response{{Content: validSlideJSON, Model: "test-model"}},
	}
	agg := stats.NewAggregator()
	gw := generate.New(mock, newLimiter(t, 10), agg)

	outcome := gw.Generate(context.Background(), "make a slide", generate.SlideSchema())

	assert.Equal(t, generate.KindSuccess, outcome.Kind)
	assert.NoError(t, outcome.Content.Validate())
	assert.Equal(t, 1, mock.CallCount())

	s := agg.Snapshot()
	assert.Equal(t, 1, s.TotalAttempts)
	assert.Equal(t, 1, s.Successful)
}

func TestGateway_RateLimitedSkipsUpstream(t *testing.T) {
	mock := &testutil.MockCompleter{
		Responses: []*llm.Response{{Content: validSlideJSON, Model: "test-model"}},
	}
	agg := stats.NewAggregator()
	gw := generate.New(mock, newLimiter(t, 1), agg)

	first := gw.Generate(context.Background(), "slide one", generate.SlideSchema())
	second := gw.Generate(context.Background(), "slide two", generate.SlideSchema())

	assert.Equal(t, generate.KindSuccess, first.Kind)
	assert.Equal(t, generate.KindRateLimited, second.Kind)
	assert.Equal(t, 1, mock.CallCount(), "denied call must not reach the upstream")

	s := agg.Snapshot()
	assert.Equal(t, 2, s.TotalAttempts)
	assert.Equal(t, 1, s.RateLimited)
}

func TestGateway_RetriesOnceOnTransient(t *testing.T) {
	mock := &testutil.MockCompleter{
		Errs:      []error{llm.NewTransientError(errors.New("upstream hiccup"))},
		Responses: []*llm.Response{{Content: validSlideJSON, Model: "test-model"}},
	}
	gw := generate.New(mock, newLimiter(t, 10), stats.NewAggregator())

	outcome := gw.Generate(context.Background(), "make a slide", generate.SlideSchema())

	assert.Equal(t, generate.KindSuccess, outcome.Kind)
	assert.Equal(t, 2, mock.CallCount())
}

func TestGateway_SecondTimeoutIsReported(t *testing.T) {
	timeoutErr := llm.NewTimeoutError(errors.New("deadline exceeded"))
	mock := &testutil.MockCompleter{Err: timeoutErr}
	agg := stats.NewAggregator()
	gw := generate.New(mock, newLimiter(t, 10), agg)

	outcome := gw.Generate(context.Background(), "make a slide", generate.SlideSchema())

	assert.Equal(t, generate.KindTimeout, outcome.Kind)
	assert.Error(t, outcome.Err)
	assert.Equal(t, 2, mock.CallCount(), "exactly one retry, no more")
	assert.Equal(t, 1, agg.Snapshot().Timeouts)
}

func TestGateway_FatalErrorNotRetried(t *testing.T) {
	mock := &testutil.MockCompleter{Err: llm.NewFatalError(errors.New("bad credentials"))}
	agg := stats.NewAggregator()
	gw := generate.New(mock, newLimiter(t, 10), agg)

	outcome := gw.Generate(context.Background(), "make a slide", generate.SlideSchema())

	assert.Equal(t, generate.KindUpstreamError, outcome.Kind)
	assert.Equal(t, 1, mock.CallCount())
	assert.Equal(t, 1, agg.Snapshot().UpstreamErrors)
}

func TestGateway_MalformedResponse(t *testing.T) {
	mock := &testutil.MockCompleter{
		Responses: []*llm.Response{{Content: "sorry, I can't do that", Model: "test-model"}},
	}
	agg := stats.NewAggregator()
	gw := generate.New(mock, newLimiter(t, 10), agg)

	outcome := gw.Generate(context.Background(), "make a slide", generate.SlideSchema())

	assert.Equal(t, generate.KindMalformed, outcome.Kind)
	assert.Error(t, outcome.Err)
	assert.Equal(t, 1, agg.Snapshot().Malformed)
}

func TestGateway_EveryOutcomeRecordedOnce(t *testing.T) {
	mock := &testutil.MockCompleter{
		Responses: []*llm.Response{{Content: validSlideJSON, Model: "test-model"}},
	}
	agg := stats.NewAggregator()
	gw := generate.New(mock, newLimiter(t, 2), agg)

	for i := 0; i < 5; i++ {
		gw.Generate(context.Background(), "slide", generate.SlideSchema())
	}

	s := agg.Snapshot()
	assert.Equal(t, 5, s.TotalAttempts)
	assert.Equal(t, 2, s.Successful)
	assert.Equal(t, 3, s.RateLimited)
}
