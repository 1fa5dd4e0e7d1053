package ratelimit

import (
	"testing"
	"time"
)

func TestTokenBucketAllow(t *testing.T) {
	tb := NewTokenBucket(3, time.Second)

	// Should allow 3 requests
	for i := 0; i < 3; i++ {
		if !tb.Allow() {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 4th request should be denied
	if tb.Allow() {
		t.Error("4th request should be denied")
	}
}

func TestTokenBucketRefill(t *testing.T) {
	tb := NewTokenBucket(2, 100*time.Millisecond)

	// Use all tokens
	tb.Allow()
	tb.Allow()

	if tb.Allow() {
		t.Error("Should be denied when tokens exhausted")
	}

	// Wait for refill
	time.Sleep(150 * time.Millisecond)

	if !tb.Allow() {
		t.Error("Should be allowed after refill")
	}
}

func TestTokenBucketReset(t *testing.T) {
	tb := NewTokenBucket(2, time.Hour)

	tb.Allow()
	tb.Allow()

	if tb.Allow() {
		t.Error("Should be denied when tokens exhausted")
	}

	tb.Reset()

	if !tb.Allow() {
		t.Error("Should be allowed after reset")
	}
}

func TestTokenBucketWait(t *testing.T) {
	tb := NewTokenBucket(1, 100*time.Millisecond)

	tb.Allow()

	start := time.Now()
	tb.Wait()
	elapsed := time.Since(start)

	if elapsed < 50*time.Millisecond {
		t.Errorf("Wait returned too quickly: %v", elapsed)
	}
	if elapsed > time.Second {
		t.Errorf("Wait took too long: %v", elapsed)
	}
}
