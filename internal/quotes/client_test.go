package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/real-time/AAPL" {
			t.Errorf("path = %s, want /real-time/AAPL", r.URL.Path)
		}
		if r.URL.Query().Get("api_token") != "test-key" {
			t.Errorf("api_token = %s, want test-key", r.URL.Query().Get("api_token"))
		}
		w.Write([]byte(`{"code":"AAPL.US","close":227.52,"change_p":1.03,"currency":"USD"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	q, err := client.FetchQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchQuote error = %v", err)
	}
	if q.Price != 227.52 {
		t.Errorf("Price = %v, want 227.52", q.Price)
	}
	if q.ChangePercent != 1.03 {
		t.Errorf("ChangePercent = %v, want 1.03", q.ChangePercent)
	}
	if q.Currency != "USD" {
		t.Errorf("Currency = %s, want USD", q.Currency)
	}
}

func TestFetchQuote_DefaultsCurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"MSFT.US","close":420.10,"change_p":-0.2}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k")
	q, err := client.FetchQuote(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("FetchQuote error = %v", err)
	}
	if q.Currency != "USD" {
		t.Errorf("Currency = %s, want USD default", q.Currency)
	}
}

func TestFetchQuote_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k")
	if _, err := client.FetchQuote(context.Background(), "AAPL"); err == nil {
		t.Error("FetchQuote on 429 error = nil, want error")
	}
}

func TestFetchQuote_NoPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"NOPE.US","close":0}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k")
	if _, err := client.FetchQuote(context.Background(), "NOPE"); err == nil {
		t.Error("FetchQuote with zero close error = nil, want error")
	}
}

func TestFetchQuote_EmptySymbol(t *testing.T) {
	client := NewClient("http://localhost", "k")
	if _, err := client.FetchQuote(context.Background(), ""); err == nil {
		t.Error("FetchQuote(\"\") error = nil, want error")
	}
}
