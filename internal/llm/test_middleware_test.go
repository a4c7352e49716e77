package llm

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	llmclient "setupwizard/internal/llm/client"
	"setupwizard/internal/tester"
)

// flaky fails the first n calls with err, then delegates to the fake.
type flaky struct {
	*llmclient.FakeClient
	mu    sync.Mutex
	fails int
	err   error
	calls int
}

func (f *flaky) Complete(ctx context.Context, prompt string, input any) (string, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.fails
	f.mu.Unlock()
	if fail {
		return "", f.err
	}
	return f.FakeClient.Complete(ctx, prompt, input)
}

func TestWrapOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next llmclient.LLMClient) llmclient.LLMClient {
			order = append(order, name)
			return next
		}
	}
	Wrap(llmclient.NewFakeClient("x"), mark("A"), nil, mark("B"))
	// Inner-most middleware is applied first.
	tester.Eq(t, order, []string{"B", "A"})
}

func TestRetryRecoversFromTransientError(t *testing.T) {
	f := &flaky{FakeClient: llmclient.NewFakeClient("ok"), fails: 2, err: errors.New("503")}
	c := Wrap(f, Retry(3, time.Millisecond))
	out, err := c.Complete(context.Background(), "p", nil)
	tester.NoErr(t, err)
	tester.Eq(t, out, "ok")
	tester.Eq(t, f.calls, 3)
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	f := &flaky{FakeClient: llmclient.NewFakeClient("ok"), fails: 5, err: errors.New("503")}
	c := Wrap(f, Retry(2, time.Millisecond))
	_, err := c.Complete(context.Background(), "p", nil)
	tester.Err(t, err)
	tester.Eq(t, f.calls, 2)
}

func TestRetrySkipsPermanentErrors(t *testing.T) {
	f := &flaky{FakeClient: llmclient.NewFakeClient("ok"), fails: 5, err: llmclient.NewPermanentError(errors.New("401"))}
	c := Wrap(f, Retry(4, time.Millisecond))
	_, err := c.Complete(context.Background(), "p", nil)
	tester.Err(t, err)
	tester.Eq(t, f.calls, 1)
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	f := &flaky{FakeClient: llmclient.NewFakeClient("ok"), fails: 5, err: errors.New("503")}
	c := Wrap(f, Retry(5, time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := c.Complete(ctx, "p", nil)
	tester.ErrIs(t, err, context.Canceled)
	tester.Eq(t, f.calls, 1)
}

func TestRateLimitBurstThenWait(t *testing.T) {
	c := Wrap(llmclient.NewFakeClient("ok"), RateLimit(20, 2))
	defer c.Close()
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Complete(context.Background(), "p", nil)
		tester.NoErr(t, err)
	}
	// The third call needs one refill at 20 rps.
	tester.True(t, time.Since(start) >= 30*time.Millisecond, "third call waited for a token")
}

func TestRateLimitHonorsContext(t *testing.T) {
	c := Wrap(llmclient.NewFakeClient("ok"), RateLimit(0.001, 1))
	defer c.Close()
	_, err := c.Complete(context.Background(), "p", nil)
	tester.NoErr(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Complete(ctx, "p", nil)
	tester.ErrIs(t, err, context.DeadlineExceeded)
}

func TestRateLimitDisabled(t *testing.T) {
	c := Wrap(llmclient.NewFakeClient("ok"), RateLimit(0, 0))
	defer c.Close()
	for i := 0; i < 10; i++ {
		_, err := c.Complete(context.Background(), "p", nil)
		tester.NoErr(t, err)
	}
}

func TestRateLimitFromEnvPriority(t *testing.T) {
	t.Setenv("LLM_RPS", "0")
	t.Setenv("GROQ_RPS", "5")
	c := Wrap(llmclient.NewFakeClient("ok"), RateLimitFromEnv(&llmclient.RateLimitConfig{RPS: 1, Burst: 1}, "LLM", "GROQ"))
	defer c.Close()
	rl := c.(*rateLimited)
	// LLM_RPS=0 wins and disables the limiter.
	tester.True(t, rl.rl == nil, "limiter disabled by LLM_RPS=0")
}

type recordingHook struct {
	before, after []string
	lastOut       string
}

func (h *recordingHook) Before(ctx context.Context, phase, prompt string, input any) {
	h.before = append(h.before, phase+":"+prompt)
}

func (h *recordingHook) After(ctx context.Context, phase, out string, err error) {
	h.after = append(h.after, phase)
	h.lastOut = out
}

func TestHooksAroundComplete(t *testing.T) {
	h := &recordingHook{}
	c := Wrap(llmclient.NewFakeClient("done"), WithHooks())
	ctx := WithPromptHook(WithPhase(context.Background(), "recommend"), h)
	_, err := c.Complete(ctx, "prompt", nil)
	tester.NoErr(t, err)
	tester.Eq(t, h.before, []string{"recommend:prompt"})
	tester.Eq(t, h.after, []string{"recommend"})
	tester.Eq(t, h.lastOut, "done")

	// No hook in context is a no-op.
	_, err = c.Complete(context.Background(), "prompt", nil)
	tester.NoErr(t, err)
	tester.Eq(t, PhaseFrom(context.Background()), "unknown")
}

func TestLoggingWritesRequestAndResponse(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	c := Wrap(llmclient.NewFakeClient("four bytes"), WithLogging(logger))
	_, err := c.Complete(WithPhase(context.Background(), "recommend"), "hello world", nil)
	tester.NoErr(t, err)
	out := buf.String()
	tester.True(t, strings.Contains(out, "LLM request (recommend, FakeLLM)"), out)
	tester.True(t, strings.Contains(out, "LLM response (recommend): 10 bytes"), out)
	tester.False(t, strings.Contains(out, "LLM warning"), out)

	buf.Reset()
	fail := llmclient.NewFakeClient()
	fail.Err = errors.New("quota")
	_, err = Wrap(fail, WithLogging(logger)).Complete(context.Background(), "p", nil)
	tester.Err(t, err)
	tester.True(t, strings.Contains(buf.String(), "LLM error (unknown): quota"), buf.String())
}

type smallClient struct {
	*llmclient.FakeClient
}

func (smallClient) TokenCapacity() int { return 1 }

func TestLoggingWarnsOverCapacity(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	c := Wrap(smallClient{llmclient.NewFakeClient("ok")}, WithLogging(logger))
	_, err := c.Complete(WithPhase(context.Background(), "recommend"), "hello world", nil)
	tester.NoErr(t, err)
	tester.True(t, strings.Contains(buf.String(), "LLM warning (recommend): prompt exceeds FakeLLM capacity of 1 tokens"), buf.String())
}

func TestCacheReusesCompletion(t *testing.T) {
	f := llmclient.NewFakeClient("first", "second")
	c := Wrap(f, Cache(8))
	ctx := context.Background()

	a, err := c.Complete(ctx, "p", map[string]any{"idea": "x"})
	tester.NoErr(t, err)
	b, err := c.Complete(ctx, "p", map[string]any{"idea": "x"})
	tester.NoErr(t, err)
	tester.Eq(t, a, "first")
	tester.Eq(t, b, "first")
	tester.Eq(t, len(f.Calls()), 1)

	// Different input misses.
	d, err := c.Complete(ctx, "p", map[string]any{"idea": "y"})
	tester.NoErr(t, err)
	tester.Eq(t, d, "second")

	// Bypass reaches the provider and refreshes the entry.
	e, err := c.Complete(WithoutCache(ctx), "p", map[string]any{"idea": "x"})
	tester.NoErr(t, err)
	tester.Eq(t, e, "second")
	g, _ := c.Complete(ctx, "p", map[string]any{"idea": "x"})
	tester.Eq(t, g, "second")
	tester.Eq(t, len(f.Calls()), 3)
}

func TestCacheSkipsErrorsAndCanBeDisabled(t *testing.T) {
	f := llmclient.NewFakeClient("ok")
	f.Err = errors.New("down")
	c := Wrap(f, Cache(4))
	_, err := c.Complete(context.Background(), "p", nil)
	tester.Err(t, err)
	f.Err = nil
	out, err := c.Complete(context.Background(), "p", nil)
	tester.NoErr(t, err)
	tester.Eq(t, out, "ok")

	inner := llmclient.NewFakeClient("ok")
	tester.True(t, Wrap(inner, Cache(0)) == llmclient.LLMClient(inner), "size 0 returns the inner client")
}
