package client

import (
	"log/slog"
	"net/http"
)

// LoginPath is where the user is sent when the server rejects the session.
const LoginPath = "/login"

// Navigator moves the user to another screen; for the CLI that means telling
// them which command to run.
type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Transport attaches the cached token to every outgoing request and ends the
// session on any 401. Install it once on the http.Client; individual calls
// never set Authorization themselves. It never retries.
type Transport struct {
	Base      http.RoundTripper
	Store     Store
	Navigator Navigator
	// LoginPath defaults to LoginPath.
	LoginPath string
	// Logger defaults to slog.Default.
	Logger    *slog.Logger
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req
	if s, err := t.Store.Load(); err == nil {
		// RoundTrippers must not modify the caller's request.
		out = req.Clone(req.Context())
		out.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if err := t.Store.Clear(); err != nil {
			t.logger().Error("clear cached session failed", "err", err)
		}
		if t.Navigator != nil {
			t.Navigator.Navigate(t.loginPath())
		}
	}
	return resp, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func (t *Transport) logger() *slog.Logger {
	if t.Logger == nil {
		return slog.Default()
	}
	return t.Logger
}

func (t *Transport) loginPath() string {
	if t.LoginPath == "" {
		return LoginPath
	}
	return t.LoginPath
}
