// Package verification drives the two step emailed-link flow shared by account
// verification and password reset.
//
// The first request carries the secret token in the URL. Once it checks out the
// token moves into the session and the caller is redirected to the same route with
// a fixed sentinel in place of the token, so the secret never reaches a Referer
// header of the page that is finally rendered. The sentinel request re-checks the
// session copy against the user's current state.
package verification

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hirelane/recruitment-service/internal/domain"
	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

// State is a node of the link flow.
type State string

const (
	StateAwaitingToken           State = "awaiting_token"
	StateTokenPresentedInURL     State = "token_presented_in_url"
	StateTokenAcceptedRedirected State = "token_accepted_redirected"
	StateSentinelPresentedInURL  State = "sentinel_presented_in_url"
	StateSessionTokenRevalidated State = "session_token_revalidated"
	StateInvalid                 State = "invalid"
)

// Terminal reports whether no further request is expected in this state.
func (s State) Terminal() bool {
	return s == StateSessionTokenRevalidated || s == StateInvalid
}

// Session is the per-browser store holding the accepted token. *session.Session from fiber satisfies it.
type Session interface {
	Get(key string) interface{}
	Set(key string, val interface{})
	Delete(key string)
}

// UserLookup loads the link's target user.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// TokenChecker validates a token against the user's current state.
type TokenChecker interface {
	CheckToken(user *domain.User, token string) bool
}

// SideEffect runs when a transition succeeds. It must be idempotent.
type SideEffect func(ctx context.Context, user *domain.User) error

// Flow is one configured link flow. It holds no per-request state and is safe for concurrent use.
type Flow struct {
	Name       string
	BasePath   string
	Sentinel   string
	SessionKey string
	Users      UserLookup
	Tokens     TokenChecker

	OnAccepted    SideEffect
	OnRevalidated SideEffect
	Observe       func(flow string, state State)
}

// Outcome is the result of one request through the flow.
type Outcome struct {
	State      State
	Trail      []State
	ValidLink  bool
	RedirectTo string
	User       *domain.User
}

// Redirect reports whether the caller must be sent to RedirectTo.
func (o Outcome) Redirect() bool {
	return o.State == StateTokenAcceptedRedirected
}

// Handle advances the flow for one request to BasePath/{uidb64}/{segment}.
// An invalid link is reported through Outcome, never as an error. Errors are
// reserved for storage or side effect failures.
func (f *Flow) Handle(ctx context.Context, uidb64, segment string, sess Session) (Outcome, error) {
	out := Outcome{State: StateAwaitingToken, Trail: []State{StateAwaitingToken}}

	link := ParseLinkToken(segment, f.Sentinel)
	if link.IsSentinel() {
		out.advance(StateSentinelPresentedInURL)
	} else {
		out.advance(StateTokenPresentedInURL)
	}

	user, err := f.loadUser(ctx, uidb64)
	if err != nil {
		return f.finish(out), err
	}
	if user == nil {
		out.advance(StateInvalid)
		return f.finish(out), nil
	}
	out.User = user

	if link.IsSentinel() {
		stored, _ := sess.Get(f.SessionKey).(string)
		if stored == "" || !f.Tokens.CheckToken(user, stored) {
			out.advance(StateInvalid)
			return f.finish(out), nil
		}
		if err := run(ctx, f.OnRevalidated, user); err != nil {
			return f.finish(out), fmt.Errorf("%s revalidated: %w", f.Name, err)
		}
		out.ValidLink = true
		out.advance(StateSessionTokenRevalidated)
		return f.finish(out), nil
	}

	if !f.Tokens.CheckToken(user, link.Secret()) {
		out.advance(StateInvalid)
		return f.finish(out), nil
	}
	sess.Set(f.SessionKey, link.Secret())
	if err := run(ctx, f.OnAccepted, user); err != nil {
		return f.finish(out), fmt.Errorf("%s accepted: %w", f.Name, err)
	}
	out.ValidLink = true
	out.RedirectTo = f.RedirectPath(uidb64)
	out.advance(StateTokenAcceptedRedirected)
	return f.finish(out), nil
}

// Revalidate re-checks the session token without running side effects.
// Callers use it to guard the action that follows a revalidated link, such as setting a new password.
func (f *Flow) Revalidate(ctx context.Context, uidb64 string, sess Session) (*domain.User, bool, error) {
	user, err := f.loadUser(ctx, uidb64)
	if err != nil || user == nil {
		return nil, false, err
	}
	stored, _ := sess.Get(f.SessionKey).(string)
	if stored == "" || !f.Tokens.CheckToken(user, stored) {
		return nil, false, nil
	}
	return user, true, nil
}

// Clear drops the session copy of the token.
func (f *Flow) Clear(sess Session) {
	sess.Delete(f.SessionKey)
}

// RedirectPath builds BasePath/{uidb64}/{sentinel}. The secret is never part of the input.
func (f *Flow) RedirectPath(uidb64 string) string {
	return strings.TrimRight(f.BasePath, "/") + "/" + url.PathEscape(uidb64) + "/" + url.PathEscape(f.Sentinel)
}

// LinkPath builds the emailed path for a freshly issued token.
func (f *Flow) LinkPath(userID, token string) string {
	return strings.TrimRight(f.BasePath, "/") + "/" + EncodeUID(userID) + "/" + url.PathEscape(token)
}

func (f *Flow) loadUser(ctx context.Context, uidb64 string) (*domain.User, error) {
	id, err := DecodeUID(uidb64)
	if err != nil {
		return nil, nil
	}
	user, err := f.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (f *Flow) finish(out Outcome) Outcome {
	if f.Observe != nil {
		f.Observe(f.Name, out.State)
	}
	return out
}

func (o *Outcome) advance(s State) {
	o.State = s
	o.Trail = append(o.Trail, s)
}

func run(ctx context.Context, effect SideEffect, user *domain.User) error {
	if effect == nil {
		return nil
	}
	return effect(ctx, user)
}

// EncodeUID encodes a user id for use as a path segment.
func EncodeUID(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uidb64 string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uidb64)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", errors.New("empty uid")
	}
	return string(raw), nil
}
