package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/sweepr/internal/getter"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List server accounts with their plex.tv usernames",
	Args:  cobra.NoArgs,
	RunE:  runUsers,
}

func init() {
	rootCmd.AddCommand(usersCmd)
}

func runUsers(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	users, err := a.evaluator.Users(cmd.Context())
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	if jsonOutput {
		return printJSON(users)
	}
	printUsersHuman(users)
	return nil
}

func printUsersHuman(users []getter.ReconciledUser) {
	if len(users) == 0 {
		fmt.Fprintln(stdout, "No users")
		return
	}
	fmt.Fprintf(stdout, "%-10s %s\n", "ID", "USERNAME")
	for _, u := range users {
		fmt.Fprintf(stdout, "%-10d %s\n", u.ID, u.Username)
	}
}
