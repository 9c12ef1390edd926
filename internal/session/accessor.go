package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/iliyamo/matchday-seat-client/internal/model"
)

const sidKey = "sid"

// Accessor is the single authority over session state.  The browser only
// carries a signed cookie with an opaque id; the values live in the Backend.
type Accessor struct {
	cookies sessions.Store
	name    string
	backend Backend
	ttl     time.Duration
}

// NewCookieStore builds the signed cookie store that carries session ids.
func NewCookieStore(secret string, ttl time.Duration, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func NewAccessor(cookies sessions.Store, name string, backend Backend, ttl time.Duration) *Accessor {
	return &Accessor{cookies: cookies, name: name, backend: backend, ttl: ttl}
}

// Load returns the session of the request.  A request without a valid
// cookie yields an empty Session and no error.
func (a *Accessor) Load(r *http.Request) (Session, error) {
	cs, err := a.cookies.Get(r, a.name)
	if err != nil {
		// tampered or stale cookie: behave as logged out
		return Session{}, nil
	}
	id, _ := cs.Values[sidKey].(string)
	if id == "" {
		return Session{}, nil
	}
	values, err := a.backend.Load(r.Context(), id)
	if err != nil {
		return Session{ID: id}, fmt.Errorf("load session: %w", err)
	}
	return fromValues(id, values), nil
}

// Save persists s and makes sure the browser holds its id.  The returned
// Session carries the id assigned on first save.
func (a *Accessor) Save(w http.ResponseWriter, r *http.Request, s Session) (Session, error) {
	cs, _ := a.cookies.Get(r, a.name)
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if err := a.backend.Save(r.Context(), s.ID, s.values(), a.ttl); err != nil {
		return s, fmt.Errorf("save session: %w", err)
	}
	cs.Values[sidKey] = s.ID
	if err := cs.Save(r, w); err != nil {
		return s, fmt.Errorf("save session cookie: %w", err)
	}
	return s, nil
}

// Issue gives a visitor without a session its id: only the cookie is set,
// nothing is stored until the first Save.  Guests need the id so their seat
// snapshot survives across requests.
func (a *Accessor) Issue(w http.ResponseWriter, r *http.Request) (Session, error) {
	cs, _ := a.cookies.Get(r, a.name)
	s := Session{ID: uuid.NewString()}
	cs.Values[sidKey] = s.ID
	if err := cs.Save(r, w); err != nil {
		return Session{}, fmt.Errorf("issue session cookie: %w", err)
	}
	return s, nil
}

// Clear removes every stored value of the session in one step and expires
// the cookie.
func (a *Accessor) Clear(w http.ResponseWriter, r *http.Request) error {
	cs, _ := a.cookies.Get(r, a.name)
	if id, _ := cs.Values[sidKey].(string); id != "" {
		if err := a.backend.Delete(r.Context(), id); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	delete(cs.Values, sidKey)
	cs.Options.MaxAge = -1
	return cs.Save(r, w)
}

// UserInfoFunc resolves an identity from a bearer token.
type UserInfoFunc func(ctx context.Context, token string) (model.Identity, error)

// Resolve fills in the identity of a session that holds an access token but
// no user id, the way a page header does on load.  Expired tokens are not
// sent.  The returned bool tells whether s changed and should be saved.
func Resolve(ctx context.Context, s Session, userInfo UserInfoFunc) (Session, bool, error) {
	if s.LoggedIn() || s.AccessToken == "" || TokenExpired(s.AccessToken) {
		return s, false, nil
	}
	id, err := userInfo(ctx, s.AccessToken)
	if err != nil {
		return s, false, err
	}
	return s.WithIdentity(id), true, nil
}
