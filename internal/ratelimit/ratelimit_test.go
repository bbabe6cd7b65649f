package ratelimit

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		documentsPerSecond float64
		want               float64
	}{
		{"unlimited_zero", 0, 0},
		{"unlimited_negative", -1, 0},
		{"limited_one_per_second", 1, 1},
		{"limited_ten_per_second", 10, 10},
		{"limited_fractional", 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := New(tt.documentsPerSecond).Limit(); got != tt.want {
				t.Fatalf("Limit() = %f, want %f", got, tt.want)
			}
		})
	}
}

func numbers(n int) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		for i := range n {
			if !yield(i, nil) {
				return
			}
		}
	}
}

func TestThrottleUnlimited(t *testing.T) {
	t.Parallel()

	start := time.Now()
	var got []int
	for v, err := range Throttle(context.Background(), New(0), numbers(100)) {
		if err != nil {
			t.Fatalf("Throttle() error: %v", err)
		}
		got = append(got, v)
	}
	if len(got) != 100 {
		t.Fatalf("len = %d, want 100", len(got))
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("unlimited throttle took %v", elapsed)
	}
}

func TestThrottlePaces(t *testing.T) {
	t.Parallel()

	start := time.Now()
	count := 0
	for _, err := range Throttle(context.Background(), New(20), numbers(3)) {
		if err != nil {
			t.Fatalf("Throttle() error: %v", err)
		}
		count++
	}
	// first passes at once, the next two wait 50ms each
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Fatalf("3 documents at 20/s took %v, want at least 80ms", elapsed)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

func TestThrottleCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got error
	for _, err := range Throttle(ctx, New(1), numbers(5)) {
		if err != nil {
			got = err
		}
	}
	if !errors.Is(got, context.Canceled) {
		t.Fatalf("Throttle() error = %v, want context.Canceled", got)
	}
}

func TestThrottlePassesErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	seq := func(yield func(int, error) bool) {
		if !yield(1, nil) {
			return
		}
		yield(0, boom)
	}

	var errs []error
	for _, err := range Throttle(context.Background(), New(0), seq) {
		errs = append(errs, err)
	}
	if len(errs) != 2 || errs[0] != nil || !errors.Is(errs[1], boom) {
		t.Fatalf("errors = %v, want [nil boom]", errs)
	}
}
