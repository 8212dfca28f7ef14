package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/otpnotes/internal/client/models"
	"github.com/dmitrijs2005/otpnotes/internal/client/services"
)

// CancelCode typed at the code prompt abandons the flow. Its length differs
// from services.OTPLength so it can never shadow a real code.
const CancelCode = ":cancel"

// getSimpleText, getOTP and getMultiline are indirections so tests can feed
// input without a terminal.
var (
	getSimpleText = GetSimpleText
	getOTP        = GetOTP
	getMultiline  = GetMultiline
)

// SignIn runs the OTP flow for an existing account.
func (a *App) SignIn(ctx context.Context) error {
	return a.authenticate(ctx, models.ModeSignIn, nil)
}

// SignUp collects the profile first, like the sign-up form, then runs the
// OTP flow for a new account.
func (a *App) SignUp(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter your name", a.out)
	if err != nil {
		return err
	}
	dobText, err := getSimpleText(a.reader, "Enter your date of birth (YYYY-MM-DD)", a.out)
	if err != nil {
		return err
	}

	var dob models.Date
	if strings.TrimSpace(dobText) != "" {
		if dob, err = models.ParseDate(dobText); err != nil {
			fmt.Fprintln(a.out, "Please enter the date as YYYY-MM-DD")
			return err
		}
	}

	profile := &models.Profile{Name: name, DateOfBirth: dob}
	if err := profile.Validate(); err != nil {
		fmt.Fprintln(a.out, "Name and date of birth are required")
		return err
	}

	return a.authenticate(ctx, models.ModeSignUp, profile)
}

// authenticate asks for the email, requests a code and then loops on the
// code prompt until the flow succeeds, is cancelled or input ends.
func (a *App) authenticate(ctx context.Context, mode models.AuthMode, profile *models.Profile) error {
	email, err := getSimpleText(a.reader, "Enter your email", a.out)
	if err != nil {
		return err
	}

	if err := a.auth.RequestOTP(ctx, email); err != nil {
		a.alert(err)
		return err
	}
	email = a.auth.PendingEmail()
	fmt.Fprintf(a.out, "A one-time code was sent to %s\n", email)

	for {
		code, err := getOTP(a.reader, a.out)
		if err != nil {
			_ = a.auth.Reset(ctx)
			return err
		}

		switch code {
		case "":
			if err := a.auth.RequestOTP(ctx, email); err != nil {
				a.alert(err)
				continue
			}
			fmt.Fprintf(a.out, "A new code was sent to %s\n", email)
			continue
		case CancelCode:
			_ = a.auth.Reset(ctx)
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}

		_, err = a.auth.VerifyAndAuthenticate(ctx, email, code, mode, profile)
		if err == nil {
			if err := a.enterDashboard(ctx); err != nil {
				a.log.Error(ctx, "dashboard failed after sign-in", "error", err)
				_ = a.auth.Reset(ctx)
				fmt.Fprintln(a.out, "Could not open your notes. Please sign in again.")
				return err
			}
			return nil
		}
		a.alert(err)
		if errors.Is(err, services.ErrInvalidTransition) {
			return err
		}
	}
}
