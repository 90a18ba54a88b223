package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
	mpxhttp "github.com/fivetwenty-io/mpx-client/internal/http"
	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
)

// AuthenticationClient implements mpx.AuthenticationClient.
type AuthenticationClient struct {
	*BaseClient

	token string
}

// NewAuthenticationClient creates a new authentication client.
func NewAuthenticationClient(config mpx.Config) *AuthenticationClient {
	return &AuthenticationClient{
		BaseClient: NewBaseClient(config),
	}
}

// SignIn implements mpx.AuthenticationClient.SignIn.
//
// Rejected credentials are a normal outcome reported as false; only
// transport failures are returned as errors.
func (c *AuthenticationClient) SignIn(ctx context.Context, user, pass string) (bool, error) {
	envelope, err := c.Get(ctx, constants.SignInPath, nil, Params{
		Auth: &mpxhttp.BasicAuth{Username: user, Password: pass},
	})
	if err != nil {
		if mpx.IsTransport(err) {
			return false, err
		}

		c.log(mpx.LevelNotice, "Sign-in rejected", map[string]interface{}{"user": user, "error": err.Error()})

		return false, nil
	}

	response, ok := envelope.Object(constants.KeySignInResponse)
	if !ok {
		return false, nil
	}

	token := response.String(constants.KeyToken)
	if token == "" {
		return false, nil
	}

	c.token = token

	return true, nil
}

// SignOut implements mpx.AuthenticationClient.SignOut.
//
// An empty token signs out the held token. With no token at all there is
// nothing to do and the call reports success. Failures are logged and
// reported as false, never returned.
func (c *AuthenticationClient) SignOut(ctx context.Context, token string) bool {
	if token == "" {
		token = c.token
	}

	if token == "" {
		return true
	}

	body, err := json.Marshal(map[string]interface{}{
		constants.KeySignOut: map[string]string{constants.KeyToken: token},
	})
	if err != nil {
		c.log(mpx.LevelWarning, "Sign-out failed", map[string]interface{}{"error": err.Error()})

		return false
	}

	resp, err := c.do(ctx, http.MethodPost, constants.SignOutPath, nil, body, Params{})
	if err == nil {
		err = signOutError(resp)
	}

	if err != nil {
		c.log(mpx.LevelWarning, "Sign-out failed", map[string]interface{}{"error": err.Error()})

		return false
	}

	c.token = ""

	return true
}

// signOutError reports a sign-out the identity service did not confirm with
// a 2xx status and a non-exception envelope.
func signOutError(resp *mpxhttp.Response) error {
	if resp.StatusCode < constants.HTTPStatusOK || resp.StatusCode >= constants.HTTPStatusMultipleChoices {
		return statusError(resp)
	}

	envelope, err := decodeEnvelope(resp)
	if err != nil {
		return err
	}

	if envelope.IsException() {
		return envelope.Exception()
	}

	return nil
}

// Token implements mpx.AuthenticationClient.Token.
func (c *AuthenticationClient) Token() string {
	return c.token
}

// Close signs out a still-held token. The identity service limits the
// number of live tokens per user, so every client must be closed. Sign-out
// failures are logged, not returned.
func (c *AuthenticationClient) Close() error {
	if c.token == "" {
		return nil
	}

	if !c.SignOut(context.Background(), "") {
		c.log(mpx.LevelError, "Token still live after close", nil)
	}

	return nil
}
