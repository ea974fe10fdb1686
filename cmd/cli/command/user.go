package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"popcornhour/database"
	"popcornhour/internal/apperr"
	"popcornhour/internal/microservices/http-api/repository"
	"popcornhour/internal/shared"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user roles and accounts",
}

var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the moderator role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUsers(func(ctx context.Context, users repository.UserRepository) error {
			return setRole(ctx, cmd, users, args[0], shared.RoleModerator)
		})
	},
}

var demoteCmd = &cobra.Command{
	Use:   "demote <email>",
	Short: "Return a moderator to the standard role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUsers(func(ctx context.Context, users repository.UserRepository) error {
			return setRole(ctx, cmd, users, args[0], shared.RoleStandard)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <email>",
	Short: "Delete a user with their ratings, comments and sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUsers(func(ctx context.Context, users repository.UserRepository) error {
			if err := users.DeleteByEmail(ctx, args[0]); err != nil {
				return describe(args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})
	},
}

func init() {
	userCmd.AddCommand(promoteCmd, demoteCmd, deleteCmd)
	rootCmd.AddCommand(userCmd)
}

func withUsers(fn func(ctx context.Context, users repository.UserRepository) error) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return fn(ctx, repository.NewUserRepository(db))
}

func setRole(ctx context.Context, cmd *cobra.Command, users repository.UserRepository, email string, role shared.Role) error {
	user, err := users.UpdateRole(ctx, email, role)
	if err != nil {
		return describe(email, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", user.Username, user.Email, user.Role)
	return nil
}

func describe(email string, err error) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("no user with email %s", email)
	}
	return err
}
