package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/airlink-io/nodectl/internal/api"
	"github.com/airlink-io/nodectl/internal/config"
	"github.com/airlink-io/nodectl/pkg/log"
	"github.com/airlink-io/nodectl/pkg/options"
)

// callbackAddr is where the browser-based login flow expects the identity
// provider to redirect. It must match the redirect URI registered with the
// cloud.
const callbackAddr = "127.0.0.1:8340"

type exchangeRequest struct {
	Code string `json:"code"`
}

// LoginWithBrowser runs a local HTTP listener, waits for the identity
// provider to redirect back with an authorization code, exchanges the code
// for tokens and persists them.
func LoginWithBrowser(ctx context.Context, store *config.Store, opts *options.APIOptions) error {
	codeCh := make(chan string, 1)

	r := mux.NewRouter()
	r.HandleFunc("/callback", func(w http.ResponseWriter, req *http.Request) {
		code := req.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing authorization code", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Login complete. You can close this window.")
		select {
		case codeCh <- code:
		default:
		}
	}).Methods(http.MethodGet)

	ln, err := net.Listen("tcp", callbackAddr)
	if err != nil {
		return fmt.Errorf("failed to start login listener: %w", err)
	}

	srv := &http.Server{Handler: r}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "Login listener terminated")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Open the following URL in your browser to log in:\n\n  %slogin?redirect_uri=http://%s/callback\n\n",
		opts.Endpoint, callbackAddr)

	var code string
	select {
	case code = <-codeCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	client, err := api.NewClient(opts, nil)
	if err != nil {
		return fmt.Errorf("failed to build api client: %w", err)
	}

	var resp loginResponse
	if err := client.PostJSON(ctx, "login", nil, exchangeRequest{Code: code}, &resp); err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("token exchange rejected: %s", resp.Description)
	}

	if err := store.SaveTokens(store.UserName(), config.Tokens{
		Access:  resp.AccessToken,
		ID:      resp.IDToken,
		Refresh: resp.RefreshToken,
	}); err != nil {
		return err
	}

	log.Info("Login successful")
	return nil
}
