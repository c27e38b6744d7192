package strategy

import (
	"testing"

	"github.com/Insula-Crypto/bot/internal/venue"
)

func TestFromName(t *testing.T) {
	always, err := FromName("always")
	if err != nil {
		t.Fatalf("FromName(always) returned error: %v", err)
	}
	if !always(venue.Quote{}) {
		t.Errorf("always policy must trade")
	}

	never, err := FromName("never")
	if err != nil {
		t.Fatalf("FromName(never) returned error: %v", err)
	}
	if never(venue.Quote{}) {
		t.Errorf("never policy must skip")
	}

	fallback, err := FromName("")
	if err != nil {
		t.Fatalf("FromName(\"\") returned error: %v", err)
	}
	if !fallback(venue.Quote{}) {
		t.Errorf("default policy must trade")
	}

	if _, err := FromName("martingale"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
