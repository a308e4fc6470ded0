package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophdesk/internal/common"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getSecret = GetSecret

var errSecretMismatch = errors.New("entries do not match")

// askSecret reads a secret without echo and returns it as a string, wiping
// the terminal buffer.
func (a *App) askSecret(prompt string) (string, error) {
	b, err := getSecret(a.out, prompt)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(b)
	return string(b), nil
}

// askCredentials prompts for a password and a PIN.
func (a *App) askCredentials(passwordPrompt, pinPrompt string) (string, string, error) {
	password, err := a.askSecret(passwordPrompt)
	if err != nil {
		return "", "", err
	}
	pin, err := a.askSecret(pinPrompt)
	if err != nil {
		return "", "", err
	}
	return password, pin, nil
}

// Register prompts for a user name, a password and a PIN and creates the
// account. It does not log in.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}

	password, pin, err := a.askCredentials("Enter password", "Enter PIN (4-12 digits)")
	if err != nil {
		return err
	}
	repeated, err := a.askSecret("Repeat password")
	if err != nil {
		return err
	}
	if repeated != password {
		return errSecretMismatch
	}

	if err := a.creds.Register(ctx, userName, password, pin); err != nil {
		return err
	}

	a.println("Success! You can now log in.")
	return nil
}

// Login prompts for credentials and starts a session. A failed attempt
// leaves the current session, if any, in place.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}

	password, pin, err := a.askCredentials("Enter password", "Enter PIN")
	if err != nil {
		return err
	}

	st, err := a.sessions.Login(ctx, userName, password, pin)
	if err != nil {
		return err
	}

	a.record(ctx, "login", "")
	a.println("Logged in as", st.Username)
	return nil
}

// Logout ends the session. It succeeds when nobody is logged in.
func (a *App) Logout(ctx context.Context) error {
	if a.isLoggedIn(ctx) {
		a.record(ctx, "logout", "")
	}
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out")
	return nil
}

// WhoAmI prints the current session state.
func (a *App) WhoAmI(ctx context.Context) error {
	st, err := a.sessions.State(ctx)
	if err != nil {
		return err
	}
	if !st.LoggedIn() {
		a.println("Not logged in")
		return nil
	}
	a.println(st.String(), "since", st.IssuedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

// ChangeCredentials replaces the password and PIN of the logged-in user.
// Every other session of that user ends; this one is renewed with the new
// credentials.
func (a *App) ChangeCredentials(ctx context.Context) error {
	userName, err := a.sessions.ActiveUser(ctx)
	if err != nil {
		return err
	}

	oldPassword, oldPin, err := a.askCredentials("Enter current password", "Enter current PIN")
	if err != nil {
		return err
	}
	newPassword, newPin, err := a.askCredentials("Enter new password", "Enter new PIN (4-12 digits)")
	if err != nil {
		return err
	}
	repeated, err := a.askSecret("Repeat new password")
	if err != nil {
		return err
	}
	if repeated != newPassword {
		return errSecretMismatch
	}

	if err := a.creds.ChangeCredentials(ctx, userName, oldPassword, oldPin, newPassword, newPin); err != nil {
		return err
	}
	if _, err := a.sessions.Login(ctx, userName, newPassword, newPin); err != nil {
		return err
	}

	a.record(ctx, "passwd", "")
	a.println("Credentials changed")
	return nil
}

// Unregister deletes the logged-in user's account together with all of the
// user's data, then logs out.
func (a *App) Unregister(ctx context.Context) error {
	userName, err := a.sessions.ActiveUser(ctx)
	if err != nil {
		return err
	}

	password, pin, err := a.askCredentials("Enter password to confirm", "Enter PIN to confirm")
	if err != nil {
		return err
	}

	if err := a.creds.Remove(ctx, userName, password, pin); err != nil {
		return err
	}
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}

	a.println("Account", userName, "removed")
	return nil
}
