package cli

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/sandeepkv93/tasktag/internal/api"
	"github.com/sandeepkv93/tasktag/internal/forms"
	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = a.flagOrPrompt(cmd, email, "Email: "); err != nil {
				return err
			}
			if password, err = a.flagOrPrompt(cmd, password, "Password: "); err != nil {
				return err
			}
			form := forms.LoginForm{Email: strings.TrimSpace(email), Password: password}
			if err := form.Validate().Err(); err != nil {
				return err
			}
			if err := a.connect(); err != nil {
				return err
			}
			defer a.close()

			st, err := a.sess.Login(cmd.Context(), form.Email, form.Password)
			if err != nil {
				log.Printf("cli: login: %v", err)
				return errors.New(api.MessageOr(err, "Login failed"))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", st.User.Name, st.User.Email)
			if !st.User.Verified() {
				fmt.Fprintln(cmd.OutOrStdout(), "Your email is not verified yet.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()
			if _, err := a.sess.Restore(ctx); err != nil {
				log.Printf("cli: restore before logout: %v", err)
			}
			if err := a.sess.Logout(ctx); err != nil {
				log.Printf("cli: logout: %v", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (a *app) registerCmd() *cobra.Command {
	var form forms.RegisterForm
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if form.Name, err = a.flagOrPrompt(cmd, form.Name, "Name: "); err != nil {
				return err
			}
			if form.Email, err = a.flagOrPrompt(cmd, form.Email, "Email: "); err != nil {
				return err
			}
			if form.Password == "" {
				if form.Password, err = a.prompt(cmd, "Password: "); err != nil {
					return err
				}
				if form.PasswordConfirmation, err = a.prompt(cmd, "Confirm password: "); err != nil {
					return err
				}
			} else if form.PasswordConfirmation == "" {
				form.PasswordConfirmation = form.Password
			}
			form.Name = strings.TrimSpace(form.Name)
			form.Email = strings.TrimSpace(form.Email)
			if err := form.Validate().Err(); err != nil {
				return err
			}
			if err := a.connect(); err != nil {
				return err
			}
			defer a.close()

			msg, err := a.client.Register(cmd.Context(), api.RegisterRequest{
				Name:                 form.Name,
				Email:                form.Email,
				Password:             form.Password,
				PasswordConfirmation: form.PasswordConfirmation,
			})
			if err != nil {
				return apiFailure(err, "Registration failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), orDefault(msg, "Registered"))
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "display name")
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "password (prompted when omitted)")
	return cmd
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()
			st, err := a.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			u := st.User
			verified := "not verified"
			if u.Verified() {
				verified = "verified " + u.EmailVerifiedAt.Format("2006-01-02")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %d, email %s)\n", u.Name, u.Email, u.ID, verified)
			return nil
		},
	}
}

func (a *app) verifyEmailCmd() *cobra.Command {
	var form forms.VerifyEmailForm
	cmd := &cobra.Command{
		Use:   "verify-email",
		Short: "Confirm an email address from a verification link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := form.Validate().Err(); err != nil {
				return err
			}
			if err := a.connect(); err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()
			st, err := a.sess.Restore(ctx)
			if err != nil {
				log.Printf("cli: restore before verify: %v", err)
			}
			msg, err := a.client.VerifyEmail(ctx, form.UserID(), strings.TrimSpace(form.Token))
			if err != nil {
				return apiFailure(err, "Email verification failed")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, orDefault(msg, "Email verified"))
			if !st.Authenticated {
				return nil
			}
			// The stored user still carries the old verification state.
			st, err = a.sess.Refresh(ctx)
			if err != nil {
				log.Printf("cli: refresh after verify: %v", err)
				return nil
			}
			if st.User != nil && st.User.Verified() {
				fmt.Fprintf(out, "%s <%s> is verified\n", st.User.Name, st.User.Email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&form.ID, "id", "", "user id from the link")
	cmd.Flags().StringVar(&form.Token, "token", "", "hash from the link")
	return cmd
}

func (a *app) resendVerificationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resend-verification",
		Short: "Send the verification email again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()
			if _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}
			msg, err := a.client.ResendVerification(cmd.Context())
			if err != nil {
				return apiFailure(err, "Failed to resend verification email")
			}
			fmt.Fprintln(cmd.OutOrStdout(), orDefault(msg, "Verification email sent"))
			return nil
		},
	}
}

func (a *app) forgotPasswordCmd() *cobra.Command {
	var form forms.ForgotPasswordForm
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if form.Email, err = a.flagOrPrompt(cmd, form.Email, "Email: "); err != nil {
				return err
			}
			form.Email = strings.TrimSpace(form.Email)
			if err := form.Validate().Err(); err != nil {
				return err
			}
			if err := a.connect(); err != nil {
				return err
			}
			defer a.close()
			msg, err := a.client.ForgotPassword(cmd.Context(), api.ForgotPasswordRequest{Email: form.Email})
			if err != nil {
				return apiFailure(err, "Failed to send reset email")
			}
			fmt.Fprintln(cmd.OutOrStdout(), orDefault(msg, "Password reset email sent"))
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	return cmd
}

func (a *app) resetPasswordCmd() *cobra.Command {
	var form forms.ResetPasswordForm
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password using a reset link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if form.Password == "" {
				if form.Password, err = a.prompt(cmd, "New password: "); err != nil {
					return err
				}
				if form.ConfirmPassword, err = a.prompt(cmd, "Confirm password: "); err != nil {
					return err
				}
			} else if form.ConfirmPassword == "" {
				form.ConfirmPassword = form.Password
			}
			if err := form.Validate().Err(); err != nil {
				return err
			}
			if err := a.connect(); err != nil {
				return err
			}
			defer a.close()
			msg, err := a.client.ResetPassword(cmd.Context(), api.ResetPasswordRequest{
				Token:                strings.TrimSpace(form.Token),
				Email:                strings.TrimSpace(form.Email),
				Password:             form.Password,
				PasswordConfirmation: form.ConfirmPassword,
			})
			if err != nil {
				return apiFailure(err, "Password reset failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), orDefault(msg, "Password has been reset"))
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Token, "token", "", "token from the reset link")
	cmd.Flags().StringVar(&form.Email, "email", "", "email from the reset link")
	cmd.Flags().StringVar(&form.Password, "password", "", "new password (prompted when omitted)")
	return cmd
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
