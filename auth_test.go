// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package govclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/govhub/govclient/store"
	"github.com/govhub/govclient/types"
	"github.com/govhub/govclient/types/events"
)

const testCustomerJSON = `{
	"_id": "cust-1",
	"NIC": "9012345678",
	"firstName": "Nimal",
	"lastName": "Perera",
	"dateOfBirth": "1990-05-01",
	"gender": "male",
	"phoneNumber": "0771234567",
	"emailAddress": "nimal@example.com",
	"address": "12 Lake Road, Colombo"
}`

// newLoginBackend returns a test server implementing just enough of the auth
// endpoints for a successful login as cust-1.
func newLoginBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /customers/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "hunter66" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message": "Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token": "test-token"}`))
	})
	mux.HandleFunc("GET /customers/email/{email}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testCustomerJSON))
	})
	return httptest.NewServer(mux)
}

func newTestClient(t *testing.T, server *httptest.Server) (*Client, *store.MemoryContainer) {
	t.Helper()
	container := store.NewMemoryContainer()
	cli := NewClient(server.URL, container, nil)
	t.Cleanup(server.Close)
	return cli, container
}

func TestLoginStoresSessionAtomically(t *testing.T) {
	cli, container := newTestClient(t, newLoginBackend(t))
	ctx := context.Background()

	user, err := cli.Login(ctx, "nimal@example.com", "hunter66")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.ID != "cust-1" {
		t.Errorf("Login returned user %q, want cust-1", user.ID)
	}
	stored, err := container.GetSession(ctx)
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if stored == nil || stored.User == nil || stored.Token == "" {
		t.Fatalf("stored session incomplete: %+v", stored)
	}
	if stored.User.ID != "cust-1" || stored.Token != "test-token" {
		t.Errorf("stored session = (%s, %s), want (cust-1, test-token)", stored.User.ID, stored.Token)
	}
	if cli.Flow() != FlowApp {
		t.Errorf("Flow() = %v after login, want FlowApp", cli.Flow())
	}
}

func TestLoginAttachesBearerToken(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /customers/login", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token": "test-token"}`))
	})
	mux.HandleFunc("GET /customers/email/{email}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testCustomerJSON))
	})
	mux.HandleFunc("GET /tickets", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	})
	cli, _ := newTestClient(t, httptest.NewServer(mux))
	ctx := context.Background()

	if _, err := cli.Login(ctx, "nimal@example.com", "whatever"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if _, err := cli.GetTicketHistory(ctx); err != nil {
		t.Fatalf("GetTicketHistory returned error: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer test-token")
	}

	if err := cli.Logout(ctx); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, err := cli.GetTicketHistory(ctx); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("GetTicketHistory after logout returned %v, want ErrNotLoggedIn", err)
	}
}

func TestLoginFailureKeepsPriorSession(t *testing.T) {
	cli, container := newTestClient(t, newLoginBackend(t))
	ctx := context.Background()

	if _, err := cli.Login(ctx, "nimal@example.com", "hunter66"); err != nil {
		t.Fatalf("first Login returned error: %v", err)
	}
	_, err := cli.Login(ctx, "nimal@example.com", "wrong-password")
	if err == nil {
		t.Fatal("second Login succeeded, want error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("second Login returned %T, want *APIError", err)
	}
	if apiErr.Message != "Invalid credentials" {
		t.Errorf("APIError message = %q, want server message", apiErr.Message)
	}

	stored, _ := container.GetSession(ctx)
	if stored == nil || stored.Token != "test-token" {
		t.Errorf("prior session was disturbed by failed login: %+v", stored)
	}
	if !cli.IsLoggedIn() {
		t.Error("client lost its session after a failed re-login")
	}
}

func TestLogoutIdempotent(t *testing.T) {
	cli, container := newTestClient(t, newLoginBackend(t))
	ctx := context.Background()

	var loggedOutEvents int
	cli.AddEventHandler(func(evt any) {
		if _, ok := evt.(*events.LoggedOut); ok {
			loggedOutEvents++
		}
	})

	if _, err := cli.Login(ctx, "nimal@example.com", "hunter66"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := cli.Logout(ctx); err != nil {
			t.Fatalf("Logout #%d returned error: %v", i+1, err)
		}
	}
	if stored, _ := container.GetSession(ctx); stored != nil {
		t.Errorf("session still stored after logout: %+v", stored)
	}
	if cli.Flow() != FlowAuth {
		t.Errorf("Flow() = %v after logout, want FlowAuth", cli.Flow())
	}
	if loggedOutEvents != 1 {
		t.Errorf("got %d LoggedOut events, want 1 (repeat logouts are no-ops)", loggedOutEvents)
	}
}

// brokenContainer always fails reads, standing in for corrupted storage.
type brokenContainer struct {
	store.MemoryContainer
}

func (bc *brokenContainer) GetSession(context.Context) (*store.Session, error) {
	return nil, errors.New("keychain exploded")
}

func TestRestoreSessionFailsOpen(t *testing.T) {
	cli := NewClient("http://localhost:0", &brokenContainer{}, nil)
	user, err := cli.RestoreSession(context.Background())
	if err != nil {
		t.Fatalf("RestoreSession returned error: %v, want anonymous fallback", err)
	}
	if user != nil || cli.Flow() != FlowAuth {
		t.Errorf("RestoreSession on broken storage produced user=%v flow=%v, want anonymous", user, cli.Flow())
	}
}

func TestRestoreSessionRoundtrip(t *testing.T) {
	server := newLoginBackend(t)
	container := store.NewMemoryContainer()
	first := NewClient(server.URL, container, nil)
	defer server.Close()
	ctx := context.Background()

	if _, err := first.Login(ctx, "nimal@example.com", "hunter66"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	second := NewClient(server.URL, container, nil)
	user, err := second.RestoreSession(ctx)
	if err != nil {
		t.Fatalf("RestoreSession returned error: %v", err)
	}
	if user == nil || user.ID != "cust-1" {
		t.Fatalf("RestoreSession returned %+v, want cust-1", user)
	}
	if second.Flow() != FlowApp {
		t.Errorf("Flow() = %v after restore, want FlowApp", second.Flow())
	}
}

func TestRegisterDoesNotEstablishSession(t *testing.T) {
	var registered bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /customers", func(w http.ResponseWriter, r *http.Request) {
		var profile types.Customer
		if err := json.NewDecoder(r.Body).Decode(&profile); err != nil || profile.Password == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		registered = true
		w.WriteHeader(http.StatusCreated)
	})
	cli, container := newTestClient(t, httptest.NewServer(mux))
	ctx := context.Background()

	profile := validProfile()
	if err := cli.Register(ctx, profile); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if !registered {
		t.Error("backend never saw the registration")
	}
	if stored, _ := container.GetSession(ctx); stored != nil {
		t.Error("Register stored a session, but only Login should")
	}
	if cli.Flow() != FlowAuth {
		t.Error("Register switched the flow, but only Login should")
	}
}

func TestRegisterValidationBlocksRequest(t *testing.T) {
	var requests int
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(http.ResponseWriter, *http.Request) { requests++ })
	cli, _ := newTestClient(t, httptest.NewServer(mux))

	profile := validProfile()
	profile.NIC = "123"
	err := cli.Register(context.Background(), profile)
	if !IsValidationError(err) {
		t.Fatalf("Register returned %v, want *ValidationError", err)
	}
	if requests != 0 {
		t.Errorf("backend saw %d requests for an invalid profile, want 0", requests)
	}
}
