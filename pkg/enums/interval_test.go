package enums

import "testing"

func TestParseInterval(t *testing.T) {
	for _, value := range []string{"daily", "weekly", "monthly", "quarterly", "biannually", "annually"} {
		interval, err := ParseInterval(value)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", value, err)
		}
		if interval.String() != value {
			t.Fatalf("expected %q, got %q", value, interval)
		}
	}
}

func TestParseIntervalRejectsUnknown(t *testing.T) {
	if _, err := ParseInterval("MONTHLY"); err == nil {
		t.Fatal("uppercase input should not parse; wire strings are lowercase")
	}
	if _, err := ParseInterval("fortnightly"); err == nil {
		t.Fatal("unknown interval should not parse")
	}
	if Interval("hourly").IsValid() {
		t.Fatal("hourly should not be valid")
	}
}

func TestParseSubscriptionStatus(t *testing.T) {
	status, err := ParseSubscriptionStatus("non-renewing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != SubscriptionStatusNonRenewing {
		t.Fatalf("unexpected status %q", status)
	}
	if _, err := ParseSubscriptionStatus("paused"); err == nil {
		t.Fatal("unknown status should not parse")
	}
}

func TestParseCurrency(t *testing.T) {
	if _, err := ParseCurrency("NGN"); err != nil {
		t.Fatalf("NGN should parse: %v", err)
	}
	if _, err := ParseCurrency("ngn"); err == nil {
		t.Fatal("currency codes are uppercase on the wire")
	}
}
