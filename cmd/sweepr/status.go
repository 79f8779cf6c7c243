package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/sweepr/internal/plex"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Plex connection status and library sections",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusResponse struct {
	Server   *plex.Identity `json:"server"`
	Sections []plex.Section `json:"sections"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.client.GetIdentity(cmd.Context())
	if err != nil {
		return fmt.Errorf("plex status failed: %w", err)
	}
	sections, err := a.client.GetSections(cmd.Context())
	if err != nil {
		return fmt.Errorf("plex status failed: %w", err)
	}

	if jsonOutput {
		return printJSON(statusResponse{Server: id, Sections: sections})
	}
	printStatusHuman(id, sections)
	return nil
}

func printStatusHuman(id *plex.Identity, sections []plex.Section) {
	fmt.Fprintf(stdout, "Plex: %s (%s)\n\n", id.Name, id.Version)

	if len(sections) == 0 {
		fmt.Fprintln(stdout, "No libraries found")
		return
	}

	fmt.Fprintln(stdout, "Libraries:")
	for _, s := range sections {
		fmt.Fprintf(stdout, "  %-4s %-24s %s\n", s.Key, s.Title, s.Type)
	}
}
