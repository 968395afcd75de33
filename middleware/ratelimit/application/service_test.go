package application

import (
	"testing"
	"time"

	"middleware-users/middleware/ratelimit/domain"
)

type fakeAdmitter struct {
	dec   domain.Decision
	calls int
	at    time.Time
}

func (f *fakeAdmitter) Admit(_ domain.Key, now time.Time) domain.Decision {
	f.calls++
	f.at = now
	return f.dec
}

func TestService_Decide_AllowsWhenNoAdmitter(t *testing.T) {
	svc := Service{}
	dec := svc.Decide("k")
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if dec.RetryAfter != 0 {
		t.Fatalf("expected RetryAfter=0 when allowed, got %s", dec.RetryAfter)
	}
}

func TestService_Decide_MissingKeyIsNotThrottling(t *testing.T) {
	adm := &fakeAdmitter{dec: domain.Allow(5, 4)}
	svc := Service{Admitter: adm}

	dec := svc.Decide("")
	if dec.Allowed {
		t.Fatalf("expected missing key to be rejected")
	}
	if dec.Reason != domain.ReasonMissingKey {
		t.Fatalf("expected ReasonMissingKey, got %s", dec.Reason)
	}
	if adm.calls != 0 {
		t.Fatalf("expected admitter not to be called, got %d calls", adm.calls)
	}
}

func TestService_Decide_UsesInjectedClock(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	adm := &fakeAdmitter{dec: domain.Allow(5, 4)}
	svc := Service{Admitter: adm, Now: func() time.Time { return at }}

	if dec := svc.Decide("k"); !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if !adm.at.Equal(at) {
		t.Fatalf("expected admitter to receive injected time, got %s", adm.at)
	}
}

func TestService_Decide_BlocksWithRetryAfterDefault(t *testing.T) {
	svc := Service{Admitter: &fakeAdmitter{dec: domain.Throttle(5, 0)}}
	dec := svc.Decide("k")
	if dec.Allowed {
		t.Fatalf("expected blocked")
	}
	if dec.Reason != domain.ReasonThrottled {
		t.Fatalf("expected ReasonThrottled, got %s", dec.Reason)
	}
	if dec.RetryAfter != 1*time.Second {
		t.Fatalf("expected default RetryAfter=1s, got %s", dec.RetryAfter)
	}
}

func TestService_Decide_KeepsAdmitterRetryAfter(t *testing.T) {
	svc := Service{Admitter: &fakeAdmitter{dec: domain.Throttle(5, 42*time.Second)}, RetryAfter: 2500 * time.Millisecond}
	dec := svc.Decide("k")
	if dec.RetryAfter != 42*time.Second {
		t.Fatalf("expected RetryAfter=42s, got %s", dec.RetryAfter)
	}
}

func TestService_Decide_BlocksWithConfiguredRetryAfter(t *testing.T) {
	svc := Service{Admitter: &fakeAdmitter{dec: domain.Throttle(5, 0)}, RetryAfter: 2500 * time.Millisecond}
	dec := svc.Decide("k")
	if dec.Allowed {
		t.Fatalf("expected blocked")
	}
	if dec.RetryAfter != 2500*time.Millisecond {
		t.Fatalf("expected RetryAfter=2.5s, got %s", dec.RetryAfter)
	}
}
