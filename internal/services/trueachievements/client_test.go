package trueachievements_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dckiller51/trueachievements/internal/services"
	"github.com/dckiller51/trueachievements/internal/services/trueachievements"
)

func testCreds() trueachievements.Credentials {
	return trueachievements.Credentials{
		GamerID:  "12345",
		Gamertag: "Tester",
		Token:    "secret-token",
	}
}

func TestDownloadExportSendsAuthHeaders(t *testing.T) {
	body := strings.Repeat("x", 2048)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/download.aspx" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("type"); got != "gamecollection" {
			t.Errorf("unexpected type param: %q", got)
		}
		if got := r.URL.Query().Get("id"); got != "12345" {
			t.Errorf("unexpected id param: %q", got)
		}
		if got := r.Header.Get("Cookie"); got != "TrueGamingIdentity=secret-token" {
			t.Errorf("unexpected cookie: %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "Mozilla/5.0" {
			t.Errorf("unexpected user agent: %q", got)
		}
		if got := r.Header.Get("Referer"); !strings.HasSuffix(got, "/gamer/Tester") {
			t.Errorf("unexpected referer: %q", got)
		}
		w.Write([]byte(body))
	}))
	defer server.Close()

	client := trueachievements.New(trueachievements.WithBaseURL(server.URL))
	got, err := client.DownloadExport(context.Background(), testCreds())
	if err != nil {
		t.Fatalf("DownloadExport returned error: %v", err)
	}
	if string(got) != body {
		t.Fatalf("unexpected body length %d", len(got))
	}
}

func TestDownloadExportReportsAuthDenied(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		client := trueachievements.New(trueachievements.WithBaseURL(server.URL))
		_, err := client.DownloadExport(context.Background(), testCreds())
		server.Close()
		if !errors.Is(err, services.ErrAuthDenied) {
			t.Fatalf("status %d: expected ErrAuthDenied, got %v", status, err)
		}
	}
}

func TestDownloadExportOtherStatusesAreNotAuthErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := trueachievements.New(trueachievements.WithBaseURL(server.URL))
	_, err := client.DownloadExport(context.Background(), testCreds())
	if err == nil {
		t.Fatal("expected error for 502")
	}
	if errors.Is(err, services.ErrAuthDenied) {
		t.Fatalf("502 must not classify as auth denial: %v", err)
	}
}

func TestValidExport(t *testing.T) {
	big := strings.Repeat("a", 1500)
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"genuine export", `"Game name","Platform"` + "\n" + big, true},
		{"login page", "<html>" + big + "</html>", false},
		{"too small", `"Game name","Platform"`, false},
		{"empty", "", false},
	}
	for _, tc := range tests {
		if got := trueachievements.ValidExport([]byte(tc.body)); got != tc.want {
			t.Errorf("%s: ValidExport = %v, want %v", tc.name, got, tc.want)
		}
	}
}
