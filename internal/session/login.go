package session

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/airlink-io/nodectl/internal/api"
	"github.com/airlink-io/nodectl/internal/config"
	"github.com/airlink-io/nodectl/pkg/log"
	"github.com/airlink-io/nodectl/pkg/options"
)

type loginRequest struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status       string `json:"status"`
	AccessToken  string `json:"accesstoken"`
	IDToken      string `json:"idtoken"`
	RefreshToken string `json:"refreshtoken"`
	Description  string `json:"description"`
}

// Login performs the password grant against the cloud API and persists the
// resulting tokens. Missing user name or password are prompted interactively.
func Login(ctx context.Context, store *config.Store, opts *options.APIOptions, userName, password string) error {
	var err error
	if userName == "" {
		userName, err = promptLine("Username: ")
		if err != nil {
			return err
		}
	}
	if password == "" {
		password, err = promptPassword("Password: ")
		if err != nil {
			return err
		}
	}

	client, err := api.NewClient(opts, nil)
	if err != nil {
		return fmt.Errorf("failed to build api client: %w", err)
	}

	var resp loginResponse
	if err := client.PostJSON(ctx, "login", nil, loginRequest{UserName: userName, Password: password}, &resp); err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}

	if !strings.Contains(resp.Status, "success") || resp.AccessToken == "" {
		return fmt.Errorf("login rejected: %s", resp.Description)
	}

	if err := store.SaveTokens(userName, config.Tokens{
		Access:  resp.AccessToken,
		ID:      resp.IDToken,
		Refresh: resp.RefreshToken,
	}); err != nil {
		return err
	}

	log.Info("Login successful", "user", userName)
	return nil
}

func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}
