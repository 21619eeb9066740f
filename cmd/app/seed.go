package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"evamed-backend/internal/db"
	"evamed-backend/internal/model"
	"evamed-backend/internal/repository"
	"evamed-backend/internal/service"
	"evamed-backend/utilities"
)

var seedCmd = &cobra.Command{
	Use:   "seed <username>",
	Short: "Create a back-office account",
	Long:  "Create an admin or creator account. The password is read from the terminal, or from stdin when piped.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := setupLogging(cfg, true); err != nil {
			return err
		}
		role, _ := cmd.Flags().GetString("role")
		displayName, _ := cmd.Flags().GetString("display-name")

		password, err := readPassword(cmd, "Contraseña: ", true)
		if err != nil {
			return err
		}

		gdb, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		// Tokens are never issued here; the manager only satisfies the constructor.
		auth := service.NewAuthService(repository.NewStore(gdb), utilities.NewTokenManager("", "", 0, 0))
		user, err := auth.CreateUser(cmd.Context(), service.CreateUserInput{
			Username:    args[0],
			Password:    password,
			DisplayName: displayName,
			Role:        role,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s %q (id %d)\n", user.Role, user.Username, user.ID)
		return nil
	},
}

func init() {
	seedCmd.Flags().String("role", model.RoleCreator, "Account role: admin or creator")
	seedCmd.Flags().String("display-name", "", "Name shown in the back office")
}
