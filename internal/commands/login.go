package commands

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"mytasks/internal/backend/googletasks"
	"mytasks/internal/config"
	"mytasks/internal/exitcode"
	"mytasks/internal/log"
	"mytasks/internal/service"
)

const (
	authorizeTimeout = 5 * time.Minute
	exchangeTimeout  = 30 * time.Second

	// The OAuth client must allow http://localhost on these ports.
	callbackFirstPort = 8085
	callbackPorts     = 5
)

const setupHelp = `To keep your tasks in Google Tasks (storage.driver: gtasks) mytasks needs a
desktop OAuth client with the Google Tasks API enabled:

  https://console.cloud.google.com/apis/library/tasks.googleapis.com
  https://console.cloud.google.com/apis/credentials  (OAuth client ID, Desktop app)

Download the client JSON, save it as %s
and run 'mytasks login' again.
`

func init() {
	Register(&LoginCmd{})
}

// LoginCmd authorizes mytasks against Google Tasks and provisions the list
// that holds the stored values.
type LoginCmd struct {
	// connect resolves the storage list with the saved token and returns
	// its ID. Defaults to connectStorage.
	connect func(ctx context.Context, cfg *config.Config) (string, error)
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Authenticate with Google for the gtasks driver" }
func (c *LoginCmd) Usage() string     { return "mytasks login [common flags]" }
func (c *LoginCmd) NeedsStore() bool  { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: oauth_client.json not found in %s\n\n", cfg.Dir)
		fmt.Fprintf(errOut, setupHelp, cfg.OAuthClientPath())
		return exitcode.AuthError
	}

	// A saved token that still reaches the storage list needs no new consent.
	if cfg.HasToken() {
		if _, err := googletasks.LoadToken(cfg.TokenPath()); err != nil {
			log.Debug().Err(err).Msg("saved token unusable")
		} else if err := c.provision(ctx, cfg); err != nil {
			log.Debug().Err(err).Msg("saved token rejected")
		} else {
			if !cfg.Quiet {
				fmt.Fprintf(out, "already logged in (list %q)\n", cfg.Storage.GTasksList)
			}
			return exitcode.Success
		}
	}

	oauthConfig, err := googletasks.OAuthConfig(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	token, err := authorize(ctx, oauthConfig, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := googletasks.SaveToken(cfg.TokenPath(), token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}

	if err := c.provision(ctx, cfg); err != nil {
		return storageFailure(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "ok (list %q)\n", cfg.Storage.GTasksList)
	}
	return exitcode.Success
}

func (c *LoginCmd) provision(ctx context.Context, cfg *config.Config) error {
	connect := c.connect
	if connect == nil {
		connect = connectStorage
	}
	listID, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	log.Debug().Str("list", cfg.Storage.GTasksList).Str("id", listID).Msg("storage list ready")
	return nil
}

// connectStorage opens the gtasks backend and creates its list if missing.
func connectStorage(ctx context.Context, cfg *config.Config) (string, error) {
	client, err := googletasks.New(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer client.Close()
	return client.EnsureList(ctx)
}

// authorize runs the browser consent flow with a loopback redirect and
// exchanges the returned code for a token.
func authorize(ctx context.Context, oauthConfig *oauth2.Config, errOut io.Writer) (*oauth2.Token, error) {
	listener, err := listenCallback()
	if err != nil {
		return nil, err
	}
	defer listener.Close()

	port := listener.Addr().(*net.TCPAddr).Port
	oauthConfig.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)

	state := rand.Text()
	verifier := oauth2.GenerateVerifier()
	authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	log.Debug().Int("port", port).Msg("oauth callback listening")
	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, authURL)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	server := &http.Server{
		Handler:           callbackHandler(state, codeCh, errCh),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			report(errCh, err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	waitCtx, cancel := context.WithTimeout(ctx, authorizeTimeout)
	defer cancel()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return nil, errors.New("cancelled")
		}
		return nil, errors.New("oauth callback timed out")
	}

	exchangeCtx, cancelExchange := context.WithTimeout(ctx, exchangeTimeout)
	defer cancelExchange()
	token, err := oauthConfig.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

// callbackHandler accepts the redirect only when it carries the state sent
// with the consent URL.
func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			report(errCh, errors.New("oauth callback state mismatch"))
			return
		case q.Get("error") != "":
			http.Error(w, "authorization failed", http.StatusBadRequest)
			report(errCh, fmt.Errorf("authorization failed: %s", q.Get("error")))
			return
		case q.Get("code") == "":
			http.Error(w, "no code in callback", http.StatusBadRequest)
			report(errCh, errors.New("no code in callback"))
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>mytasks is connected</h1><p>You may close this window.</p></body></html>")
		select {
		case codeCh <- q.Get("code"):
		default:
		}
	})
	return mux
}

// report delivers err unless an earlier error is still pending.
func report(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
}

func listenCallback() (net.Listener, error) {
	for port := callbackFirstPort; port < callbackFirstPort+callbackPorts; port++ {
		if l, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port)); err == nil {
			return l, nil
		}
	}
	return nil, fmt.Errorf("no free callback port in %d-%d", callbackFirstPort, callbackFirstPort+callbackPorts-1)
}
