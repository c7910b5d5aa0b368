package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// readSecret prompts for a value without echoing it when stdin is a terminal
func (a *app) readSecret(prompt string) (string, error) {
	if a.stdin == nil {
		return "", errors.New("no input available")
	}
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(os.Stderr, prompt)
		value, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return strings.TrimSpace(string(value)), nil
	}

	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// ensureAccessToken prompts for a token when none was configured
func (a *app) ensureAccessToken(current string) (string, error) {
	if current != "" {
		return current, nil
	}
	token, err := a.readSecret("Access token: ")
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", errors.New("an access token is required (use --access-token or IGSDK_ACCESS_TOKEN)")
	}
	return token, nil
}
