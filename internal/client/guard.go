package client

import "errors"

var (
	ErrLoginRequired = errors.New("login required")
	ErrAdminRequired = errors.New("admin session required")
)

// Guard decides whether a protected screen may render. It only inspects the
// local cache; the server's gates remain the real check.
type Guard struct {
	Store     Store
	Navigator Navigator
	LoginPath string
}

// Protect calls render with the cached session, or navigates to login and
// returns ErrLoginRequired when none is cached.
func (g Guard) Protect(render func(Session) error) error {
	s, err := g.Store.Load()
	if err != nil {
		if g.Navigator != nil {
			g.Navigator.Navigate(g.loginPath())
		}
		return ErrLoginRequired
	}
	return render(s)
}

// ProtectAdmin is Protect plus the cached admin flag. A stale flag is possible;
// the server rejects the call if so.
func (g Guard) ProtectAdmin(render func(Session) error) error {
	return g.Protect(func(s Session) error {
		if !s.User.IsAdmin {
			return ErrAdminRequired
		}
		return render(s)
	})
}

func (g Guard) loginPath() string {
	if g.LoginPath == "" {
		return LoginPath
	}
	return g.LoginPath
}
