package mailtm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestListDomains_HydraAndBareArray(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "hydra", body: `{"hydra:member":[{"id":"1","domain":"example.com","isActive":true}],"hydra:totalItems":1}`},
		{name: "bare", body: `[{"id":"1","domain":"example.com","isActive":true}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
				if r.Method != http.MethodGet || r.URL.Path != "/domains" {
					t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				return jsonResponse(http.StatusOK, tt.body), nil
			})}
			c := NewClientWithHTTPClient("https://mail.test/", time.Second, hc)

			domains, err := c.ListDomains(context.Background())
			if err != nil {
				t.Fatalf("ListDomains: %v", err)
			}
			if len(domains) != 1 || domains[0].Domain != "example.com" || !domains[0].Active() {
				t.Fatalf("unexpected domains %+v", domains)
			}
		})
	}
}

func TestDomainActive_DefaultsTrue(t *testing.T) {
	var d Domain
	if err := json.Unmarshal([]byte(`{"domain":"example.com"}`), &d); err != nil {
		t.Fatal(err)
	}
	if !d.Active() {
		t.Fatal("domain without isActive should count as active")
	}
	if err := json.Unmarshal([]byte(`{"domain":"example.com","isActive":false}`), &d); err != nil {
		t.Fatal(err)
	}
	if d.Active() {
		t.Fatal("isActive=false should be inactive")
	}
}

func TestCreateAccount_SendsCredentials(t *testing.T) {
	var captured Credentials
	hc := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/accounts" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return jsonResponse(http.StatusCreated, `{"id":"acc-1","address":"user_x@example.com"}`), nil
	})}
	c := NewClientWithHTTPClient("https://mail.test", time.Second, hc)

	account, err := c.CreateAccount(context.Background(), Credentials{Address: "user_x@example.com", Password: "secure_x"})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if account.ID != "acc-1" {
		t.Fatalf("unexpected account %+v", account)
	}
	if captured.Address != "user_x@example.com" || captured.Password != "secure_x" {
		t.Fatalf("unexpected credentials sent: %+v", captured)
	}
}

func TestCreateAccount_StatusError(t *testing.T) {
	hc := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnprocessableEntity, `{"detail":"address: This value is already used."}`), nil
	})}
	c := NewClientWithHTTPClient("https://mail.test", time.Second, hc)

	_, err := c.CreateAccount(context.Background(), Credentials{Address: "a@b.com", Password: "p"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusUnprocessableEntity || !strings.Contains(statusErr.Body, "already used") {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
}

func TestRequestToken_EmptyTokenIsError(t *testing.T) {
	hc := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"id":"acc-1"}`), nil
	})}
	c := NewClientWithHTTPClient("https://mail.test", time.Second, hc)

	if _, err := c.RequestToken(context.Background(), Credentials{Address: "a@b.com", Password: "p"}); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestListMessages_UsesBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/ld+json")
		w.Write([]byte(`{"hydra:member":[
			{"id":"m1","from":{"address":"a@b.com","name":"A"},"subject":"Hi"},
			{"id":"m2","from":{"address":"c@d.com"},"subject":"Second"}
		]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	msgs, err := c.ListMessages(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].From.Address != "a@b.com" || msgs[0].Subject != "Hi" || msgs[1].Subject != "Second" {
		t.Fatalf("unexpected order or content: %+v", msgs)
	}
}

func TestListMessages_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":401,"message":"Expired JWT Token"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	_, err := c.ListMessages(context.Background(), "expired")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", 0)
	if c.BaseURL() != DefaultBaseURL {
		t.Fatalf("expected default base URL, got %q", c.BaseURL())
	}
	if c.httpClient.Timeout != defaultTimeout {
		t.Fatalf("expected default timeout, got %v", c.httpClient.Timeout)
	}
}
