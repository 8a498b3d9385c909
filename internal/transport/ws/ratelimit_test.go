package ws

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestConnectAllowed(t *testing.T) {
	rl := NewIPRateLimiter(2, 5, time.Second)

	if !rl.ConnectAllowed("1.1.1.1") || !rl.ConnectAllowed("1.1.1.1") {
		t.Fatal("first two connections refused")
	}
	if rl.ConnectAllowed("1.1.1.1") {
		t.Error("third connection allowed over limit 2")
	}
	if !rl.ConnectAllowed("2.2.2.2") {
		t.Error("other IP refused")
	}

	rl.Disconnect("1.1.1.1")
	if !rl.ConnectAllowed("1.1.1.1") {
		t.Error("connection refused after a disconnect")
	}

	rl.Disconnect("9.9.9.9")
	rl.Disconnect("2.2.2.2")
	rl.Disconnect("2.2.2.2")
	if got := rl.Connections("2.2.2.2"); got != 0 {
		t.Errorf("Connections() = %d, expected 0", got)
	}
}

func TestMessageAllowedRefills(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewIPRateLimiter(1, 3, time.Second)
	rl.now = func() time.Time { return now }
	rl.ConnectAllowed("ip")

	for i := range 3 {
		if !rl.MessageAllowed("ip") {
			t.Fatalf("message %d refused within rate", i)
		}
	}
	if rl.MessageAllowed("ip") {
		t.Error("fourth message allowed in the same window")
	}

	now = now.Add(1500 * time.Millisecond)
	if !rl.MessageAllowed("ip") {
		t.Error("message refused after refill")
	}
}

func TestMessageRateDisabled(t *testing.T) {
	rl := NewIPRateLimiter(0, 0, time.Second)
	for range 100 {
		if !rl.MessageAllowed("ip") {
			t.Fatal("message refused with rate 0")
		}
	}
	for range 10 {
		if !rl.ConnectAllowed("ip") {
			t.Fatal("connection refused with limit 0")
		}
	}
}

func TestPrune(t *testing.T) {
	rl := NewIPRateLimiter(1, 1, time.Second)
	rl.ConnectAllowed("gone")
	rl.Disconnect("gone")
	rl.ConnectAllowed("here")

	rl.prune()

	if _, ok := rl.visitors["gone"]; ok {
		t.Error("idle visitor kept")
	}
	if _, ok := rl.visitors["here"]; !ok {
		t.Error("connected visitor pruned")
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name     string
		xff      string
		remote   string
		expected string
	}{
		{"remote addr", "", "10.0.0.1:1234", "10.0.0.1"},
		{"forwarded single", "203.0.113.5", "10.0.0.1:1234", "203.0.113.5"},
		{"forwarded chain", "203.0.113.5, 10.0.0.2", "10.0.0.1:1234", "203.0.113.5"},
		{"no port", "", "10.0.0.1", "10.0.0.1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remote
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if got := RealIP(r); got != tc.expected {
				t.Errorf("RealIP() = %q, expected %q", got, tc.expected)
			}
		})
	}
}
