package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/sweepr/internal/catalog"
)

var propertiesMedia string

var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "List the properties rules can use",
	Args:  cobra.NoArgs,
	RunE:  runProperties,
}

func init() {
	rootCmd.AddCommand(propertiesCmd)
	propertiesCmd.Flags().StringVar(&propertiesMedia, "media", "", "Only properties for this library kind (movie, show)")
}

func runProperties(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	props, err := filterByMedia(cat.Properties(catalog.ApplicationPlex), propertiesMedia)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(props)
	}
	printPropertiesHuman(props)
	return nil
}

// filterByMedia keeps properties that apply to the given library kind.
// Properties scoped to both kinds always match.
func filterByMedia(props []catalog.Descriptor, media string) ([]catalog.Descriptor, error) {
	switch catalog.MediaScope(media) {
	case "":
		return props, nil
	case catalog.MediaMovie, catalog.MediaShow:
	default:
		return nil, fmt.Errorf("invalid --media %q: must be movie or show", media)
	}

	out := make([]catalog.Descriptor, 0, len(props))
	for _, p := range props {
		if p.Media == catalog.MediaBoth || p.Media == catalog.MediaScope(media) {
			out = append(out, p)
		}
	}
	return out, nil
}

func printPropertiesHuman(props []catalog.Descriptor) {
	if len(props) == 0 {
		fmt.Fprintln(stdout, "No properties")
		return
	}
	fmt.Fprintf(stdout, "%-4s %-38s %-10s %-6s %s\n", "ID", "NAME", "TYPE", "MEDIA", "DESCRIPTION")
	for _, p := range props {
		fmt.Fprintf(stdout, "%-4d %-38s %-10s %-6s %s\n", p.ID, p.Name, p.Type, p.Media, p.HumanName)
	}
}
