package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account on the server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var email, name string
		fmt.Print("Email: ")
		_, _ = fmt.Scanln(&email)
		fmt.Print("Name: ")
		_, _ = fmt.Scanln(&name)

		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		fmt.Println()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.Register(ctx, email, name, string(password)); err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		color.Green("Account created. Log in with: steno login")
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the bearer token locally",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var email string
		fmt.Print("Email: ")
		_, _ = fmt.Scanln(&email)

		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		fmt.Println()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.Login(ctx, email, string(password)); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}

		color.Green("Logged in.")
		return nil
	},
}
