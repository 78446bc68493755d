package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"steno/internal/domain/record"
)

var (
	addLabel   string
	addSiteID  string
	addAction  string
	addValue   string
	addFieldEl string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a record locally; it syncs on the next push",
}

var addSiteCmd = &cobra.Command{
	Use:   "site <hostname>",
	Short: "Add a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		var label *string
		if addLabel != "" {
			label = &addLabel
		}
		site, err := app.AddSite(args[0], label)
		if err != nil {
			return err
		}
		color.Green("Site %s created: %s", site.Hostname, site.ID)
		return nil
	},
}

var addPersonaCmd = &cobra.Command{
	Use:   "persona <name>",
	Short: "Add a persona",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		siteID, err := parseSiteFlag()
		if err != nil {
			return err
		}
		persona, err := app.AddPersona(args[0], siteID)
		if err != nil {
			return err
		}
		color.Green("Persona %s created: %s", persona.Name, persona.ID)
		return nil
	},
}

var addScriptCmd = &cobra.Command{
	Use:   "script <name>",
	Short: "Add a one-step script",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if addFieldEl == "" {
			return fmt.Errorf("--selector is required")
		}
		siteID, err := parseSiteFlag()
		if err != nil {
			return err
		}
		fields := []record.Field{{Selector: addFieldEl, Value: addValue, Action: addAction}}
		script, err := app.AddScript(args[0], fields, siteID, nil)
		if err != nil {
			return err
		}
		color.Green("Script %s created: %s", script.Name, script.ID)
		return nil
	},
}

func parseSiteFlag() (*uuid.UUID, error) {
	if addSiteID == "" {
		return nil, nil
	}
	id, err := uuid.Parse(addSiteID)
	if err != nil {
		return nil, fmt.Errorf("invalid --site id: %w", err)
	}
	return &id, nil
}

func init() {
	addSiteCmd.Flags().StringVar(&addLabel, "label", "", "display label")

	addPersonaCmd.Flags().StringVar(&addSiteID, "site", "", "bind to a site id")

	addScriptCmd.Flags().StringVar(&addSiteID, "site", "", "bind to a site id")
	addScriptCmd.Flags().StringVar(&addFieldEl, "selector", "", "CSS selector of the first step")
	addScriptCmd.Flags().StringVar(&addValue, "value", "", "value for the first step")
	addScriptCmd.Flags().StringVar(&addAction, "action", "fill", "action for the first step")

	addCmd.AddCommand(addSiteCmd)
	addCmd.AddCommand(addPersonaCmd)
	addCmd.AddCommand(addScriptCmd)
}
