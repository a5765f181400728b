package fx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest" {
			t.Errorf("path = %s, want /latest", r.URL.Path)
		}
		if r.URL.Query().Get("from") != "USD" || r.URL.Query().Get("to") != "EUR" {
			t.Errorf("query = %s, want from=USD&to=EUR", r.URL.RawQuery)
		}
		w.Write([]byte(`{"amount":1.0,"base":"USD","rates":{"EUR":0.92}}`))
	}))
	defer srv.Close()

	s := &Service{BaseURL: srv.URL, Client: srv.Client()}
	rate, err := s.fetchRate(context.Background(), "USD", "EUR")
	if err != nil {
		t.Fatalf("fetchRate error = %v", err)
	}
	if rate != 0.92 {
		t.Errorf("rate = %v, want 0.92", rate)
	}
}

func TestFetchRate_MissingPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"amount":1.0,"base":"USD","rates":{}}`))
	}))
	defer srv.Close()

	s := &Service{BaseURL: srv.URL, Client: srv.Client()}
	if _, err := s.fetchRate(context.Background(), "USD", "XXX"); err == nil {
		t.Error("fetchRate with no rate error = nil, want error")
	}
}

func TestFetchRate_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := &Service{BaseURL: srv.URL, Client: srv.Client()}
	if _, err := s.fetchRate(context.Background(), "USD", "EUR"); err == nil {
		t.Error("fetchRate on 404 error = nil, want error")
	}
}
