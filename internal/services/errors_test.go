package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dckiller51/trueachievements/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrAuthDenied, "trueachievements", "fetch export", "denied", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrAuthDenied) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"trueachievements", "fetch export", "denied"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker for nil marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected empty context to carry no request id")
	}
	ctx = services.WithRequestID(ctx, "cycle-1")
	id, ok := services.RequestIDFromContext(ctx)
	if !ok || id != "cycle-1" {
		t.Fatalf("expected request id to round-trip, got %q ok=%v", id, ok)
	}

	ctx = services.WithTrigger(ctx, "interval")
	trigger, ok := services.TriggerFromContext(ctx)
	if !ok || trigger != "interval" {
		t.Fatalf("expected trigger to round-trip, got %q ok=%v", trigger, ok)
	}
}
