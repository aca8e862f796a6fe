package cli

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/avolkov/scanonce/internal/client/api"
	"github.com/avolkov/scanonce/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, email, and password and creates a new
// account. The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.client.Register(ctx, username, email, string(password)); err != nil {
		if errors.Is(err, api.ErrAlreadyExists) {
			printlnFn("That username or email is already taken.")
			return err
		}
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	printlnFn("Success! You can now log in.")
	return nil
}

// Login prompts for credentials and authenticates through the session
// manager, which persists the session for the next run.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.sessions.Login(ctx, username, string(password))
	if err != nil {
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			printlnFn("Invalid username or password.")
		case errors.Is(err, api.ErrUnavailable):
			printlnFn("Server unavailable, try again later.")
		default:
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return err
	}

	printlnFn("Logged in as", s.Identity.Username)
	return nil
}

// Logout drops the active session locally. Safe to call when not logged in.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		log.Printf("Logout error: %s", err.Error())
		return err
	}
	printlnFn("Logged out.")
	return nil
}
