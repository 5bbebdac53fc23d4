package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/civicdesk/internal/client/client"
	"github.com/dmitrijs2005/civicdesk/internal/common"
)

// getSimpleText and getPassword are swapped out in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// describe turns client errors into a line for the user.
func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrNotLoggedIn):
		return "you are not logged in"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again later"
	case errors.Is(err, client.ErrUnauthorized):
		if errors.As(err, &apiErr) {
			return apiErr.Message
		}
		return "unauthorized"
	case errors.As(err, &apiErr):
		return apiErr.Message
	}
	return err.Error()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Register asks for the account details and creates the account. Name, CPF
// and phone may be left empty.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	req := client.RegisterRequest{Email: email, Password: string(password)}
	for _, f := range []struct {
		prompt string
		dst    **string
	}{
		{"Enter name (optional)", &req.Name},
		{"Enter CPF (optional)", &req.CPF},
		{"Enter phone (optional)", &req.Phone},
	} {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = optional(v)
	}

	if err := a.api.Register(ctx, req); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success! You can log in now.")
	return nil
}

// Login asks for credentials and opens a session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.api.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		return err
	}

	a.user = user
	a.setMode(ModeOnline)
	if user != nil {
		fmt.Fprintf(a.out, "Logged in as %s\n", user.DisplayName())
	}
	return nil
}

// Me prints the profile of the logged-in user.
func (a *App) Me(ctx context.Context) error {
	user, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	a.user = user

	fmt.Fprintf(a.out, "ID:     %s\n", user.ID)
	fmt.Fprintf(a.out, "Email:  %s\n", user.Email)
	if user.Name != nil {
		fmt.Fprintf(a.out, "Name:   %s\n", *user.Name)
	}
	if user.CPF != nil {
		fmt.Fprintf(a.out, "CPF:    %s\n", *user.CPF)
	}
	if user.Phone != nil {
		fmt.Fprintf(a.out, "Phone:  %s\n", *user.Phone)
	}
	if user.BirthDate != nil {
		fmt.Fprintf(a.out, "Born:   %s\n", user.BirthDate.Format("2006-01-02"))
	}
	if user.PhotoURL != nil {
		fmt.Fprintf(a.out, "Photo:  %s\n", *user.PhotoURL)
	}
	return nil
}

// Refresh exchanges the refresh token for a new access token.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.api.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Access token refreshed")
	return nil
}

// Logout ends the session. The local session is cleared even when the
// server could not be told.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	if errors.Is(err, client.ErrNotLoggedIn) {
		return err
	}
	a.user = nil
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
