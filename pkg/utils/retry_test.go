package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryStartup_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := RetryStartup(context.Background(), 5, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryStartup_GivesUp(t *testing.T) {
	cause := errors.New("connection refused")
	calls := 0
	err := RetryStartup(context.Background(), 2, time.Millisecond, func(context.Context) error {
		calls++
		return cause
	})
	if !errors.Is(err, cause) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected initial attempt plus 2 retries, got %d", calls)
	}
}
