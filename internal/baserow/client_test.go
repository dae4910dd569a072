package baserow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetJSONSendsTokenHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client := NewClient("secret-token", 5*time.Second)
	var out map[string]bool
	if err := client.GetJSON(context.Background(), server.URL, &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}

	if gotAuth != "Token secret-token" {
		t.Errorf("Expected Token auth header, got %q", gotAuth)
	}
	if !out["ok"] {
		t.Error("Response body not decoded")
	}
}

func TestGetJSONReturnsAPIErrorOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-token", 5*time.Second)
	err := client.GetJSON(context.Background(), server.URL, &struct{}{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", apiErr.StatusCode)
	}
}

func TestListRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 2, "next": "", "results": [
			{"id": 1, "Year": "2024"},
			{"id": 2, "Year": "2025"}
		]}`))
	}))
	defer server.Close()

	client := NewClient("tok", 5*time.Second)
	resp, err := client.ListRows(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("ListRows failed: %v", err)
	}
	if resp.Count != 2 || len(resp.Results) != 2 {
		t.Errorf("Expected 2 rows, got count=%d len=%d", resp.Count, len(resp.Results))
	}
	if resp.Results[1]["Year"] != "2025" {
		t.Errorf("Row values not decoded, got %v", resp.Results[1])
	}
}

func TestListFieldsAcceptsBareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1, "name": "Year", "type": "text", "primary": true}]`))
	}))
	defer server.Close()

	client := NewClient("tok", 5*time.Second)
	fields, err := client.ListFields(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("ListFields failed: %v", err)
	}
	if len(fields) != 1 || fields[0].Name != "Year" || !fields[0].Primary {
		t.Errorf("Unexpected fields: %+v", fields)
	}
}

func TestListFieldsAcceptsResultsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 1, "results": [{"id": 2, "name": "City", "type": "text"}]}`))
	}))
	defer server.Close()

	client := NewClient("tok", 5*time.Second)
	fields, err := client.ListFields(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("ListFields failed: %v", err)
	}
	if len(fields) != 1 || fields[0].Name != "City" {
		t.Errorf("Unexpected fields: %+v", fields)
	}
}

func TestGetJSONHonorsContextCancellation(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient("tok", 5*time.Second)
	if err := client.GetJSON(ctx, server.URL, &struct{}{}); err == nil {
		t.Fatal("Expected error after context deadline")
	}
}
