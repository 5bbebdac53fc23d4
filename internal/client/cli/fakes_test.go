package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/dmitrijs2005/civicdesk/internal/client/client"
	"github.com/dmitrijs2005/civicdesk/internal/client/models"
)

type fakeAPI struct {
	registered client.RegisterRequest
	regErr     error

	loginEmail string
	loginPass  string
	loginUser  *models.User
	loginErr   error

	me    *models.User
	meErr error

	refreshes  int
	refreshErr error

	logouts   int
	logoutErr error

	loggedIn  bool
	healthErr error
}

func (f *fakeAPI) Register(_ context.Context, in client.RegisterRequest) error {
	f.registered = in
	return f.regErr
}

func (f *fakeAPI) Login(_ context.Context, email string, password []byte) (*models.User, error) {
	f.loginEmail, f.loginPass = email, string(password)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.loggedIn = true
	return f.loginUser, nil
}

func (f *fakeAPI) Me(context.Context) (*models.User, error) { return f.me, f.meErr }

func (f *fakeAPI) Refresh(context.Context) error {
	f.refreshes++
	return f.refreshErr
}

func (f *fakeAPI) Logout(context.Context) error {
	if !f.loggedIn {
		return client.ErrNotLoggedIn
	}
	f.logouts++
	f.loggedIn = false
	return f.logoutErr
}

func (f *fakeAPI) LoggedIn() bool               { return f.loggedIn }
func (f *fakeAPI) Health(context.Context) error { return f.healthErr }

// stubInputs answers text prompts from answers in order and the password
// prompt with password.
func stubInputs(t *testing.T, password string, answers ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})

	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(answers) == 0 {
			return "", io.EOF
		}
		v := answers[0]
		answers = answers[1:]
		return v, nil
	}
	getPassword = func(io.Writer) ([]byte, error) { return []byte(password), nil }
}

func newTestApp(api *fakeAPI) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &App{api: api, out: out}, out
}
