// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hatena

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/dghubble/oauth1"

	"github.com/pdiddy/hatebu-clipper/pkg/types"
)

// ErrAuthentication wraps every handshake failure.
var ErrAuthentication = errors.New("authentication failed")

// Scope is the access requested during the handshake. Deleting bookmarks
// needs write access; searching private bookmarks needs read_private.
const Scope = "read_public,read_private,write_public,write_private"

// Prompter obtains the verifier code once the operator has approved access
// at authURL. It is the handshake's only suspension point.
type Prompter interface {
	PromptVerifier(ctx context.Context, authURL string) (string, error)
}

// ConsolePrompter prints the authorization URL and reads the verifier from
// In. It blocks until a line is entered; there is no timeout.
type ConsolePrompter struct {
	In  io.Reader
	Out io.Writer
}

// PromptVerifier implements Prompter.
func (p ConsolePrompter) PromptVerifier(_ context.Context, authURL string) (string, error) {
	rule := strings.Repeat("-", 50)
	fmt.Fprintln(p.Out, rule)
	fmt.Fprintln(p.Out, "Please access the following URL to authenticate:")
	fmt.Fprintln(p.Out, authURL)
	fmt.Fprintln(p.Out, rule)
	fmt.Fprint(p.Out, "Please enter the PIN code (Verifier): ")

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading verifier: %w", err)
	}
	verifier := strings.TrimSpace(line)
	if verifier == "" {
		return "", errors.New("empty verifier")
	}
	return verifier, nil
}

// Authenticator runs the three-legged OAuth 1.0a handshake.
type Authenticator struct {
	config   *oauth1.Config
	prompter Prompter
	log      io.Writer
}

// NewAuthenticator prepares a handshake for the given consumer. The scope is
// carried as a query parameter on the request-token URL so it is covered by
// the request signature.
func NewAuthenticator(consumerKey, consumerSecret string, endpoints Endpoints, prompter Prompter, log io.Writer) *Authenticator {
	if log == nil {
		log = io.Discard
	}
	return &Authenticator{
		config: &oauth1.Config{
			ConsumerKey:    consumerKey,
			ConsumerSecret: consumerSecret,
			CallbackURL:    "oob",
			Endpoint: oauth1.Endpoint{
				RequestTokenURL: withScope(endpoints.RequestToken),
				AuthorizeURL:    endpoints.Authorize,
				AccessTokenURL:  endpoints.AccessToken,
			},
		},
		prompter: prompter,
		log:      log,
	}
}

// Authenticate returns a fresh access token pair. It does not retry and does
// not persist anything; the caller hands the result to the credential store.
func (a *Authenticator) Authenticate(ctx context.Context) (types.Credentials, error) {
	fmt.Fprintln(a.log, "Getting request token...")
	requestToken, requestSecret, err := a.config.RequestToken()
	if err != nil {
		return types.Credentials{}, fmt.Errorf("%w: getting request token: %v", ErrAuthentication, err)
	}

	authURL, err := a.config.AuthorizationURL(requestToken)
	if err != nil {
		return types.Credentials{}, fmt.Errorf("%w: building authorization URL: %v", ErrAuthentication, err)
	}

	verifier, err := a.prompter.PromptVerifier(ctx, authURL.String())
	if err != nil {
		return types.Credentials{}, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	fmt.Fprintln(a.log, "Getting access token...")
	accessToken, accessSecret, err := a.config.AccessToken(requestToken, requestSecret, verifier)
	if err != nil {
		return types.Credentials{}, fmt.Errorf("%w: getting access token: %v", ErrAuthentication, err)
	}

	creds := types.Credentials{Token: accessToken, TokenSecret: accessSecret}
	if !creds.Valid() {
		return types.Credentials{}, fmt.Errorf("%w: access token response is incomplete", ErrAuthentication)
	}
	return creds, nil
}

func withScope(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	q := u.Query()
	q.Set("scope", Scope)
	u.RawQuery = q.Encode()
	return u.String()
}
