package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/otpnotes/internal/client/services"
	"github.com/dmitrijs2005/otpnotes/internal/client/session"
)

// List prints the cached notes.
func (a *App) List(ctx context.Context) error {
	notes := a.notes.Notes()
	if len(notes) == 0 {
		fmt.Fprintln(a.out, "No notes yet. Start writing!")
		return nil
	}
	for _, n := range notes {
		fmt.Fprintln(a.out, n.String())
	}
	return nil
}

// AddNote prompts for a title and a multi-line body and creates the note.
func (a *App) AddNote(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Note title", a.out)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Write your note...", a.out)
	if err != nil {
		return err
	}

	note, err := a.notes.Create(ctx, title, content)
	if err != nil {
		if errors.Is(err, services.ErrTitleRequired) {
			a.alert(err)
		} else {
			fmt.Fprintln(a.out, "The note was not saved.")
		}
		return err
	}

	fmt.Fprintf(a.out, "Added [%s] %s\n", note.ID, note.Title)
	return nil
}

// Delete removes the note with id. A failure is only logged.
func (a *App) Delete(ctx context.Context, id string) error {
	return a.notes.Delete(ctx, id)
}

// WhoAmI prints the dashboard header. Token expiry is shown only when the
// token happens to be a JWT.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.notes.User()
	fmt.Fprintf(a.out, "Welcome, %s!\n", u.Name)
	fmt.Fprintf(a.out, "Email: %s\n", u.Email)
	if !u.DateOfBirth.IsZero() {
		fmt.Fprintf(a.out, "Date of birth: %s\n", u.DateOfBirth)
	}

	info, ok := session.DescribeToken(a.notes.Token())
	if ok && !info.ExpiresAt.IsZero() {
		if info.Expired(time.Now()) {
			fmt.Fprintf(a.out, "Session token expired at %s\n", info.ExpiresAt.Local().Format(time.RFC1123))
		} else {
			fmt.Fprintf(a.out, "Session token expires at %s\n", info.ExpiresAt.Local().Format(time.RFC1123))
		}
	}
	return nil
}

// SignOut clears the stored session and returns to the signed-out prompt.
func (a *App) SignOut(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		a.log.Error(ctx, "sign out failed", "error", err)
		fmt.Fprintln(a.out, "Could not sign out. Try again.")
		return err
	}
	a.notes.Unmount()
	a.signedIn = false
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}
