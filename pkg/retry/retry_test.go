package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "smd/pkg/errors"
	"smd/pkg/logger"
)

func fastConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, fastConfig())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return errs.New(errs.ErrorTypeNetwork, "transient failure")
		}
		return nil
	}, fastConfig())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	wantErr := errs.New(errs.ErrorTypeValidation, "bad input")
	err := Do(func() error {
		calls++
		return wantErr
	}, fastConfig())

	if !errors.Is(err, wantErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoExhaustsMaxAttempts(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return errs.New(errs.ErrorTypeNetwork, "always failing")
	}, fastConfig())

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := fastConfig()
	cfg.Context = ctx
	cfg.Backoff = &ConstantBackoff{Delay: time.Minute}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Do(func() error {
		return errs.New(errs.ErrorTypeNetwork, "fail")
	}, cfg)

	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("retry did not abort promptly on cancellation")
	}
}

func TestDoOnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := fastConfig()
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	}

	_ = Do(func() error {
		return errs.New(errs.ErrorTypeNetwork, "fail")
	}, cfg)

	if len(attempts) != 3 {
		t.Errorf("expected 3 retry callbacks, got %d", len(attempts))
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	result, err := DoWithResult(func() (string, error) {
		calls++
		if calls < 2 {
			return "", errs.New(errs.ErrorTypeNetwork, "transient")
		}
		return "payload", nil
	}, fastConfig())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "payload" {
		t.Errorf("expected payload, got %q", result)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"network is retryable", errs.New(errs.ErrorTypeNetwork, "x"), true},
		{"extraction is retryable", errs.New(errs.ErrorTypeExtraction, "x"), true},
		{"validation is not", errs.New(errs.ErrorTypeValidation, "x"), false},
		{"crypto is not", errs.New(errs.ErrorTypeCrypto, "x"), false},
		{"context canceled is not", context.Canceled, false},
		{"unknown errors are", errors.New("mystery"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryIf(tt.err); got != tt.want {
				t.Errorf("DefaultRetryIf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetrierWithMaxAttempts(t *testing.T) {
	calls := 0
	r := NewRetrier(fastConfig()).WithMaxAttempts(1)
	_ = r.Do(func() error {
		calls++
		return errs.New(errs.ErrorTypeNetwork, "fail")
	})

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
