package util

import (
	"testing"
	"time"
)

func TestLimiter(t *testing.T) {
	// 10 tokens per second, burst of 2
	l := NewLimiter(10, 2)

	if !l.Allow(1) {
		t.Error("expected first token to be allowed")
	}
	if !l.Allow(1) {
		t.Error("expected second token to be allowed (burst)")
	}
	if l.Allow(1) {
		t.Error("expected third token to be rejected (burst exhausted)")
	}

	time.Sleep(150 * time.Millisecond)
	if !l.Allow(1) {
		t.Error("expected token to be refilled after wait")
	}
}

func TestLimiter_Delay(t *testing.T) {
	l := NewLimiter(1, 1)
	if d := l.Delay(); d != 0 {
		t.Fatalf("expected a token to be available, got delay %v", d)
	}
	if !l.Allow(1) {
		t.Fatal("Delay must not consume the token")
	}

	d := l.Delay()
	if d <= 500*time.Millisecond || d > time.Second {
		t.Fatalf("expected a delay close to one second, got %v", d)
	}
	if l.Allow(1) {
		t.Fatal("bucket should still be empty")
	}
}
