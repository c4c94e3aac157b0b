package main

import (
	"github.com/spf13/cobra"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/shell"
)

var adminMine bool

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Back-office accounts and activity",
}

var adminLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in as an admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		return command(cmd, shell.AdminLoginRoute, shell.ActionAdminLogin, domain.Credentials{Email: authEmail, Password: authPassword})
	},
}

var adminExistsCmd = &cobra.Command{
	Use:   "exists",
	Short: "Report whether any admin account exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		return query(cmd, "/admin-register", shell.ActionAdminExists, nil)
	},
}

var adminRegisterFirstCmd = &cobra.Command{
	Use:   "register-first",
	Short: "Create the first admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		form := domain.Registration{Name: authName, Email: authEmail, Password: authPassword}
		return command(cmd, "/admin-register", shell.ActionRegisterFirstAdmin, form)
	},
}

var adminProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the logged-in admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		return query(cmd, "/admin/profile", shell.ActionAdminProfile, nil)
	},
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List admin accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return query(cmd, "/admin/admins", shell.ActionAdminList, nil)
	},
}

var adminRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create another admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		form := domain.Registration{Name: authName, Email: authEmail, Password: authPassword}
		return command(cmd, "/admin/admins", shell.ActionAdminRegister, form)
	},
}

var adminLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show admin activity logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		action := shell.ActionActivityLogs
		if adminMine {
			action = shell.ActionMyActivityLogs
		}
		return query(cmd, "/admin/activity", action, nil)
	},
}

func init() {
	credentialFlags(adminLoginCmd)
	for _, c := range []*cobra.Command{adminRegisterFirstCmd, adminRegisterCmd} {
		credentialFlags(c)
		c.Flags().StringVar(&authName, "name", "", "display name")
	}
	adminLogsCmd.Flags().BoolVar(&adminMine, "mine", false, "only my own actions")

	adminCmd.AddCommand(adminLoginCmd, adminExistsCmd, adminRegisterFirstCmd, adminProfileCmd,
		adminListCmd, adminRegisterCmd, adminLogsCmd)
}
