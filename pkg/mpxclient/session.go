package mpxclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
)

// ErrSignInRejected is returned when the identity service does not issue a token.
var ErrSignInRejected = errors.New("sign-in rejected")

// Session holds one signed-in token and builds clients bound to it.
//
// The identity service caps the number of live tokens per user; Close must
// be called once the session is no longer needed. WithSession does that.
type Session struct {
	auth mpx.AuthenticationClient
	opts []Option
}

// NewSession creates a session that is not yet signed in. opts apply to every
// client the session builds.
func NewSession(opts ...Option) (*Session, error) {
	auth, err := NewAuthenticationClient(opts...)
	if err != nil {
		return nil, err
	}

	return &Session{auth: auth, opts: opts}, nil
}

// SignIn obtains a token for user.
func (s *Session) SignIn(ctx context.Context, user, pass string) error {
	ok, err := s.auth.SignIn(ctx, user, pass)
	if err != nil {
		return fmt.Errorf("signing in as %s: %w", user, err)
	}

	if !ok {
		return fmt.Errorf("%w for user %s", ErrSignInRejected, user)
	}

	return nil
}

// Token returns the current token; empty before sign-in and after Close.
func (s *Session) Token() string {
	return s.auth.Token()
}

// FeedConfigClient returns a FeedConfig client bound to the session token.
func (s *Session) FeedConfigClient() (mpx.FeedConfigClient, error) {
	token, err := s.requireToken()
	if err != nil {
		return nil, err
	}

	return NewFeedConfigClient(token, s.opts...)
}

// MediaRequestClient returns a MediaRequest client bound to the session token.
func (s *Session) MediaRequestClient() (mpx.MediaRequestClient, error) {
	token, err := s.requireToken()
	if err != nil {
		return nil, err
	}

	return NewMediaRequestClient(token, s.opts...)
}

// MediaClient returns a Media client bound to the session token.
func (s *Session) MediaClient() (mpx.MediaClient, error) {
	token, err := s.requireToken()
	if err != nil {
		return nil, err
	}

	return NewMediaClient(token, s.opts...)
}

// Close signs the token out. It is safe to call more than once.
func (s *Session) Close() error {
	return s.auth.Close()
}

func (s *Session) requireToken() (string, error) {
	token := s.auth.Token()
	if token == "" {
		return "", &mpx.ValidationError{Field: "token", Err: mpx.ErrTokenRequired}
	}

	return token, nil
}

// WithSession signs in, runs fn and signs out again, whatever fn returns.
func WithSession(ctx context.Context, user, pass string, fn func(ctx context.Context, s *Session) error, opts ...Option) error {
	session, err := NewSession(opts...)
	if err != nil {
		return err
	}

	defer func() {
		_ = session.Close()
	}()

	err = session.SignIn(ctx, user, pass)
	if err != nil {
		return err
	}

	return fn(ctx, session)
}
