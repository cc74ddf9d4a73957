package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	defaultRedirectAddr = "localhost:8080"
	authTimeout         = 5 * time.Minute
)

// DefaultScopes covers reading, labelling, trashing and sending mail plus
// creating calendar events
var DefaultScopes = []string{
	gmail.GmailModifyScope,
	gmail.GmailSendScope,
	calapi.CalendarEventsScope,
}

// OAuth2Config holds OAuth2 configuration
type OAuth2Config struct {
	CredentialsPath string
	TokenPath       string
	Scopes          []string

	// RedirectAddr is where the local callback server listens
	RedirectAddr string
	// Out receives the interactive authorization instructions
	Out io.Writer
}

// NewOAuth2Config creates a new OAuth2 configuration. Without scopes the
// DefaultScopes are requested.
func NewOAuth2Config(credentialsPath string, tokenPath string, scopes ...string) *OAuth2Config {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &OAuth2Config{
		CredentialsPath: credentialsPath,
		TokenPath:       tokenPath,
		Scopes:          scopes,
		RedirectAddr:    defaultRedirectAddr,
		Out:             os.Stdout,
	}
}

func (c *OAuth2Config) out() io.Writer {
	if c.Out == nil {
		return io.Discard
	}
	return c.Out
}

// LoadCredentials loads OAuth2 credentials from file
func (c *OAuth2Config) LoadCredentials() (*oauth2.Config, error) {
	data, err := os.ReadFile(c.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("could not read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(data, c.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("could not parse credentials file: %w", err)
	}

	return config, nil
}

// LoadToken loads the cached token from file
func (c *OAuth2Config) LoadToken() (*oauth2.Token, error) {
	f, err := os.Open(c.TokenPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("could not decode token file: %w", err)
	}
	return token, nil
}

// SaveToken saves token to file
func (c *OAuth2Config) SaveToken(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("nil token")
	}
	if err := os.MkdirAll(filepath.Dir(c.TokenPath), 0o700); err != nil {
		return err
	}

	f, err := os.OpenFile(c.TokenPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("could not save OAuth token: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}

// GetToken returns a usable token. A cached token is refreshed when expired;
// a missing or revoked one starts the browser flow.
func (c *OAuth2Config) GetToken(ctx context.Context) (*oauth2.Token, error) {
	config, err := c.LoadCredentials()
	if err != nil {
		return nil, err
	}
	return c.tokenFor(ctx, config)
}

func (c *OAuth2Config) tokenFor(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	token, err := c.LoadToken()
	if err != nil {
		token, err = c.authenticate(ctx, config)
		if err != nil {
			return nil, err
		}
	}

	if !token.Valid() {
		token, err = config.TokenSource(ctx, token).Token()
		switch {
		case err == nil:
		case IsRevoked(err):
			fmt.Fprintln(c.out(), "\nYour Google access has expired or was revoked, re-authorizing.")
			token, err = c.authenticate(ctx, config)
			if err != nil {
				return nil, fmt.Errorf("re-authentication failed: %w", err)
			}
		default:
			return nil, fmt.Errorf("token refresh failed: %w", err)
		}
	}

	if err := c.SaveToken(token); err != nil {
		return nil, err
	}
	return token, nil
}

// IsRevoked reports whether a refresh failed because the grant is no longer valid
func IsRevoked(err error) bool {
	var rerr *oauth2.RetrieveError
	return errors.As(err, &rerr) && rerr.ErrorCode == "invalid_grant"
}

// authenticate runs the installed-app flow with a local callback server
func (c *OAuth2Config) authenticate(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	addr := c.RedirectAddr
	if addr == "" {
		addr = defaultRedirectAddr
	}
	codeChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler:           callbackHandler(codeChan, errorChan),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errorChan <- err:
			default:
			}
		}
	}()
	defer func() { _ = server.Shutdown(context.Background()) }()

	localConfig := *config
	localConfig.RedirectURL = "http://" + addr

	authURL := localConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(c.out(), "\nAuthorization required\n")
	fmt.Fprintf(c.out(), "1. Open this link: %s\n", authURL)
	fmt.Fprintf(c.out(), "2. Grant access to inboxpilot\n")
	fmt.Fprintf(c.out(), "3. You will be redirected automatically\n")
	fmt.Fprintf(c.out(), "\nWaiting for authorization...\n")

	var authCode string
	select {
	case authCode = <-codeChan:
	case err := <-errorChan:
		return nil, fmt.Errorf("local server error: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(authTimeout):
		return nil, fmt.Errorf("authorization timeout exceeded")
	}

	token, err := localConfig.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("could not exchange authorization code for token: %w", err)
	}
	fmt.Fprintln(c.out(), "Authorization successful.")
	return token, nil
}

func callbackHandler(codeChan chan<- string, errorChan chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`<html><body><h2>Authorization error</h2><p>Authorization code not received.</p></body></html>`))
			select {
			case errorChan <- fmt.Errorf("authorization code not received"):
			default:
			}
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html><body><h2>Authorization successful</h2><p>You can close this window and return to inboxpilot.</p></body></html>`))
		select {
		case codeChan <- code:
		default:
		}
	})
}

// HTTPClient returns an authorized client that refreshes its token as needed
func (c *OAuth2Config) HTTPClient(ctx context.Context) (*http.Client, error) {
	config, err := c.LoadCredentials()
	if err != nil {
		return nil, err
	}
	token, err := c.tokenFor(ctx, config)
	if err != nil {
		return nil, err
	}
	return config.Client(ctx, token), nil
}

// NewServices authorizes once and builds the Gmail and Calendar services
// sharing that token
func NewServices(ctx context.Context, credentialsPath, tokenPath string, scopes ...string) (*gmail.Service, *calapi.Service, error) {
	httpClient, err := NewOAuth2Config(credentialsPath, tokenPath, scopes...).HTTPClient(ctx)
	if err != nil {
		return nil, nil, err
	}

	gsvc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, nil, fmt.Errorf("could not create Gmail service: %w", err)
	}
	csvc, err := calapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, nil, fmt.Errorf("could not create Calendar service: %w", err)
	}
	return gsvc, csvc, nil
}
