package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/condoway/client-go/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts the user for credentials and authenticates through the
// session manager, which persists the session for silent re-login later.
// On success the per-resource controllers are (re)bound to the session's
// apartment identity. The password byte slice is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.session.Login(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			fmt.Println("Invalid email or password")
			return err
		}
		fmt.Printf("Login failed: %s\n", err.Error())
		return err
	}

	a.bindControllers()
	fmt.Printf("Welcome, %s\n", user.Name)
	return nil
}

// Logout tears down the session and drops the controllers. Always succeeds.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	a.dropControllers()
	fmt.Println("Logged out")
	return nil
}

// Whoami prints the current resident record.
func (a *App) Whoami(ctx context.Context) error {
	user, ok := a.session.CurrentUser()
	if !ok {
		fmt.Println("Not logged in")
		return nil
	}
	fmt.Printf("%s <%s> (unit %d)\n", user.Name, user.Email, user.UnitUserID)
	return nil
}
