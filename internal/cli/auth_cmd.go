// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/baatcheet/baatcheet-cli/internal/api"
	"github.com/baatcheet/baatcheet-cli/internal/model"
	"github.com/baatcheet/baatcheet-cli/internal/session"
)

// =============================================================================
// LOGIN / SIGNUP / VERIFY
// =============================================================================

func (r *Runner) runLogin(ctx context.Context, raw []string) error {
	p := NewArgParser(raw)
	email, err := r.argOrPrompt(p.FirstFlag("email", "e"), p.Positional(0), "Email: ")
	if err != nil {
		return err
	}
	password, err := r.ReadPassword("Password: ")
	if err != nil {
		return err
	}

	result, err := r.App.Flow.SignIn(ctx, email, password)
	if err != nil {
		return r.transitionError(err)
	}
	return r.reportAuth(ctx, "login", result)
}

func (r *Runner) runSignup(ctx context.Context, raw []string) error {
	p := NewArgParser(raw)
	email, err := r.argOrPrompt(p.FirstFlag("email", "e"), p.Positional(0), "Email: ")
	if err != nil {
		return err
	}
	password, err := r.ReadPassword("Password (min 8 characters): ")
	if err != nil {
		return err
	}
	confirm, err := r.ReadPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return NewValidationError("password", "", "passwords do not match")
	}

	in := model.SignUpInput{
		Email:     email,
		Password:  password,
		FirstName: p.Flag("first"),
		LastName:  p.Flag("last"),
	}
	result, err := r.App.Flow.SignUp(ctx, in)
	if err != nil {
		return r.transitionError(err)
	}
	return r.reportAuth(ctx, "signup", result)
}

func (r *Runner) runVerify(ctx context.Context, raw []string) error {
	p := NewArgParser(raw)
	code := p.Positional(0)
	if code == "" {
		var err error
		if code, err = r.prompt("Verification code: "); err != nil {
			return err
		}
	}

	result, err := r.App.Flow.Verify(ctx, p.FirstFlag("email", "e"), code)
	if err != nil {
		return r.transitionError(err)
	}
	return r.reportAuth(ctx, "verify", result)
}

func (r *Runner) runResend(ctx context.Context, raw []string) error {
	p := NewArgParser(raw)
	email := p.FirstFlag("email", "e")
	if email == "" {
		email = p.Positional(0)
	}
	if email == "" {
		email, _ = r.App.Auth.PendingEmail()
	}
	if email == "" {
		return ErrMissingArgument("email", "baatcheet resend you@example.com")
	}

	if err := r.App.AuthUseCase.Resend(ctx, email); err != nil {
		return err
	}
	return r.emit("resend", map[string]string{"email": email}, func() {
		fmt.Fprintf(r.Out, "%s A new verification code was sent to %s\n", SuccessStyle.Render("[OK]"), email)
	})
}

// reportAuth prints the outcome of a sign-in style call. A failure is
// returned as the domain error it carries.
func (r *Runner) reportAuth(ctx context.Context, command string, result model.AuthResult) error {
	switch res := result.(type) {
	case model.AuthSuccess:
		data := whoamiData(res.User, r.sessionExpiry())
		return r.emit(command, data, func() {
			fmt.Fprintf(r.Out, "%s Signed in as %s (%s)\n",
				SuccessStyle.Render("[OK]"), res.User.DisplayName(), res.User.Email)
			r.printQuota(ctx)
		})

	case model.AuthNeedsVerification:
		data := map[string]string{"status": "needs_verification", "email": res.Email}
		return r.emit(command, data, func() {
			fmt.Fprintf(r.Out, "%s Check %s for a 6-digit code, then run:\n",
				WarningStyle.Render("[VERIFY]"), res.Email)
			fmt.Fprintln(r.Out, "  baatcheet verify <code>")
		})

	case model.AuthFailure:
		if res.Err != nil {
			return res.Err
		}
		return res
	}
	return fmt.Errorf("%s: unexpected result %T", command, result)
}

// printQuota shows remaining messages after sign-in. Failures are quiet;
// Prefetch already logged them.
func (r *Runner) printQuota(ctx context.Context) {
	pre := r.App.Prefetch(ctx)
	if pre.Usage != nil && !r.Quiet {
		fmt.Fprintf(r.Out, "  %s tier, %d messages left today\n",
			pre.Usage.Tier, pre.Usage.MessagesRemaining())
	}
}

func (r *Runner) transitionError(err error) error {
	var te *session.TransitionError
	if errors.As(err, &te) && te.From == session.StateAuthenticated {
		return NewCommandError("auth", "start", "already signed in; run 'baatcheet logout' first", err)
	}
	return err
}

// =============================================================================
// LOGOUT / WHOAMI
// =============================================================================

func (r *Runner) runLogout(ctx context.Context) error {
	if err := r.requireSignedIn(); err != nil {
		return err
	}
	if err := r.App.Flow.Logout(ctx); err != nil {
		return WrapError(err, "logout")
	}
	return r.emit("logout", map[string]bool{"signed_out": true}, func() {
		fmt.Fprintf(r.Out, "%s Signed out\n", SuccessStyle.Render("[OK]"))
	})
}

func (r *Runner) runWhoami(ctx context.Context) error {
	if err := r.requireSignedIn(); err != nil {
		return err
	}

	user, err := r.App.Auth.CurrentUser(ctx)
	if err != nil {
		cached, ok := r.App.Auth.CachedUser()
		if !ok || api.KindOf(err) != api.KindNetwork {
			return err
		}
		r.info("%s offline, showing cached account\n", WarningStyle.Render("[WARN]"))
		user = cached
	}

	expiry := r.sessionExpiry()
	return r.emit("whoami", whoamiData(user, expiry), func() {
		fmt.Fprintln(r.Out, TitleStyle.Render(user.DisplayName()))
		fmt.Fprintf(r.Out, "%s%s\n", RenderLabel("Email"), ValueStyle.Render(user.Email))
		fmt.Fprintf(r.Out, "%s%s\n", RenderLabel("Tier"), ValueStyle.Render(user.Tier))
		fmt.Fprintf(r.Out, "%s%s\n", RenderLabel("User ID"), DimStyle.Render(user.ID))
		if expiry != nil {
			fmt.Fprintf(r.Out, "%s%s (in %s)\n", RenderLabel("Session expires"),
				ValueStyle.Render(expiry.Local().Format(time.RFC1123)), formatDuration(time.Until(*expiry)))
		}
	})
}

func (r *Runner) sessionExpiry() *time.Time {
	if exp, ok := r.App.Auth.SessionExpiry(); ok {
		return &exp
	}
	return nil
}

func whoamiData(u model.User, expiry *time.Time) WhoamiData {
	return WhoamiData{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.DisplayName(),
		Tier:           u.Tier,
		SessionExpires: expiry,
	}
}

// =============================================================================
// PASSWORD
// =============================================================================

const passwordUsage = "baatcheet password [forgot <email> | reset <email> <code> | change]"

func (r *Runner) runPassword(ctx context.Context, raw []string) error {
	p := NewArgParser(raw)
	switch p.Subcommand() {
	case "forgot":
		email := p.Positional(1)
		if email == "" {
			return ErrMissingArgument("email", "baatcheet password forgot you@example.com")
		}
		if err := r.App.AuthUseCase.ForgotPassword(ctx, email); err != nil {
			return err
		}
		return r.emit("password", map[string]string{"reset_sent": email}, func() {
			fmt.Fprintf(r.Out, "%s If %s has an account, a reset code is on its way\n",
				SuccessStyle.Render("[OK]"), email)
		})

	case "reset":
		email, code := p.Positional(1), p.Positional(2)
		if email == "" || code == "" {
			return ErrMissingArgument("email and code", "baatcheet password reset you@example.com 123456")
		}
		next, err := r.ReadPassword("New password: ")
		if err != nil {
			return err
		}
		if err := r.App.AuthUseCase.ResetPassword(ctx, email, code, next); err != nil {
			return err
		}
		return r.emit("password", map[string]bool{"reset": true}, func() {
			fmt.Fprintf(r.Out, "%s Password reset. Sign in with 'baatcheet login'\n", SuccessStyle.Render("[OK]"))
		})

	case "change":
		if err := r.requireSignedIn(); err != nil {
			return err
		}
		current, err := r.ReadPassword("Current password: ")
		if err != nil {
			return err
		}
		next, err := r.ReadPassword("New password: ")
		if err != nil {
			return err
		}
		if err := r.App.Auth.ChangePassword(ctx, current, next); err != nil {
			return err
		}
		return r.emit("password", map[string]bool{"changed": true}, func() {
			fmt.Fprintf(r.Out, "%s Password changed\n", SuccessStyle.Render("[OK]"))
		})

	case "":
		return ErrMissingArgument("subcommand", passwordUsage)
	default:
		return ErrUnknownSubcommand("password", p.Subcommand(), passwordUsage)
	}
}

// argOrPrompt returns the first non-empty candidate, prompting when all
// are empty.
func (r *Runner) argOrPrompt(flag, positional, label string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if positional != "" {
		return positional, nil
	}
	return r.prompt(label)
}
