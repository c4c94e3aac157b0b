package main

import (
	"github.com/spf13/cobra"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/shell"
)

var (
	authEmail    string
	authPassword string
	authName     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in as a customer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return command(cmd, shell.LoginRoute, shell.ActionLogin, domain.Credentials{Email: authEmail, Password: authPassword})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a customer account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		form := domain.Registration{Name: authName, Email: authEmail, Password: authPassword}
		return command(cmd, "/register", shell.ActionRegister, form)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return command(cmd, "/", shell.ActionLogout, nil)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current identity and cart partition",
	RunE: func(cmd *cobra.Command, args []string) error {
		return query(cmd, "/", shell.ActionWhoAmI, nil)
	},
}

func credentialFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&authEmail, "email", "", "account email")
	cmd.Flags().StringVar(&authPassword, "password", "", "account password")
}

func init() {
	credentialFlags(loginCmd)
	credentialFlags(registerCmd)
	registerCmd.Flags().StringVar(&authName, "name", "", "display name")
}
