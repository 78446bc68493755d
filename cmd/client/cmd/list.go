package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [sites|personas|scripts]",
	Short: "List local records of one kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		bold := color.New(color.Bold)

		switch args[0] {
		case "sites":
			sites, err := app.ListSites(ctx)
			if err != nil {
				return err
			}
			bold.Printf("Sites (%d)\n", len(sites))
			for _, s := range sites {
				label := ""
				if s.Label != nil {
					label = " — " + *s.Label
				}
				fmt.Printf("  %s  %s%s\n", s.ID, s.Hostname, label)
			}
		case "personas":
			personas, err := app.ListPersonas(ctx)
			if err != nil {
				return err
			}
			bold.Printf("Personas (%d)\n", len(personas))
			for _, p := range personas {
				site := ""
				if p.SiteID != nil {
					site = "  site=" + p.SiteID.String()
				}
				fmt.Printf("  %s  %s%s\n", p.ID, p.Name, site)
			}
		case "scripts":
			scripts, err := app.ListScripts(ctx)
			if err != nil {
				return err
			}
			bold.Printf("Scripts (%d)\n", len(scripts))
			for _, s := range scripts {
				fmt.Printf("  %s  %s  v%d  %d steps\n", s.ID, s.Name, s.Version, len(s.Fields))
			}
		default:
			return fmt.Errorf("unknown kind %q, expected sites, personas or scripts", args[0])
		}
		return nil
	},
}
