package commands

import (
	"context"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

func startCallback(t *testing.T, ctx context.Context, state string) (string, <-chan [2]string) {
	t.Helper()
	listener, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	got := make(chan [2]string, 1)
	go func() {
		code, err := awaitCallback(ctx, listener, state)
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		got <- [2]string{code, msg}
	}()
	return "http://" + listener.Addr().String() + "/callback", got
}

func TestAwaitCallback(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
		wantErr    string
	}{
		{"code", "?state=s1&code=abc", http.StatusOK, "abc", ""},
		{"state mismatch", "?state=other&code=abc", http.StatusBadRequest, "", "oauth callback: state mismatch"},
		{"denied", "?state=s1&error=access_denied", http.StatusForbidden, "", "oauth callback: access_denied"},
		{"no code", "?state=s1", http.StatusBadRequest, "", "oauth callback: no code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, got := startCallback(t, context.Background(), "s1")

			resp, err := http.Get(url + tt.query)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}

			select {
			case r := <-got:
				if r[0] != tt.wantCode || r[1] != tt.wantErr {
					t.Errorf("expected (%q, %q), got (%q, %q)", tt.wantCode, tt.wantErr, r[0], r[1])
				}
			case <-time.After(5 * time.Second):
				t.Fatal("awaitCallback did not return")
			}
		})
	}
}

func TestAwaitCallback_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, got := startCallback(t, ctx, "s1")

	select {
	case r := <-got:
		if !strings.Contains(r[1], "timed out") {
			t.Errorf("expected timeout error, got %q", r[1])
		}
	case <-time.After(5 * time.Second):
		t.Fatal("awaitCallback did not return")
	}
}
