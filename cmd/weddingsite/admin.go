package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"weddingsite/internal/repos"
	"weddingsite/internal/services"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage back-office accounts",
	}
	cmd.AddCommand(adminCreateCmd())
	return cmd
}

func adminCreateCmd() *cobra.Command {
	var email, name, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account, or reset its password",
		Example: `  weddingsite admin create --email couple@example.com --name "Ana & Bruno"
  ADMIN_PASSWORD=... weddingsite admin create --email couple@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			if password == "" {
				password = cfg.AdminPassword
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			auth := services.NewAuthService(repos.NewUserRepo(db), cfg.JWTSecret, cfg.JWTTTL)
			u, err := auth.EnsureAdmin(cmd.Context(), email, name, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s ready (id %s)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (default $ADMIN_PASSWORD, else prompt)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
