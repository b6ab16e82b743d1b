package rate

import (
	"testing"
	"time"
)

func TestMemoryLimiter(t *testing.T) {
	limiter := NewMemory()

	for i := 0; i < 3; i++ {
		ok, _ := limiter.Allow("k", 3, time.Hour)
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, retry := limiter.Allow("k", 3, time.Hour)
	if ok {
		t.Fatalf("fourth request should be denied")
	}
	if retry <= 0 {
		t.Fatalf("expected positive retry, got %v", retry)
	}

	// A different key has its own window.
	if ok, _ := limiter.Allow("other", 3, time.Hour); !ok {
		t.Fatalf("unrelated key should be allowed")
	}
}

func TestMemoryLimiterWindowReset(t *testing.T) {
	limiter := NewMemory()

	if ok, _ := limiter.Allow("k", 1, 10*time.Millisecond); !ok {
		t.Fatalf("first request should be allowed")
	}
	if ok, _ := limiter.Allow("k", 1, 10*time.Millisecond); ok {
		t.Fatalf("second request should be denied")
	}

	time.Sleep(20 * time.Millisecond)

	if ok, _ := limiter.Allow("k", 1, 10*time.Millisecond); !ok {
		t.Fatalf("request after window reset should be allowed")
	}
}
