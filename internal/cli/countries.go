package cli

import (
	"encoding/json"
	"fmt"

	"github.com/hightemp/indicators/internal/countries"
	"github.com/spf13/cobra"
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the canonical country names",
	Long: `Lists every registry entry as alpha-2, alpha-3 and canonical name.
These names are the only values resolve produces besides aaa.Unknown.

Examples:
  indicators countries
  indicators countries --names
  indicators countries --code TR`,
	Args: cobra.NoArgs,
	RunE: runCountries,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "indicators %s (commit %s, built %s)\n", Version, Commit, BuildTime)
	},
}

var (
	namesOnly bool
	codeFlag  string
)

func init() {
	countriesCmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	countriesCmd.Flags().BoolVar(&namesOnly, "names", false, "print canonical names only")
	countriesCmd.Flags().StringVar(&codeFlag, "code", "", "print the canonical name for an alpha-2 code")
}

type countryEntry struct {
	Alpha2       string `json:"alpha2"`
	Alpha3       string `json:"alpha3"`
	Numeric      string `json:"numeric"`
	Name         string `json:"name"`
	OfficialName string `json:"official_name,omitempty"`
	CommonName   string `json:"common_name,omitempty"`
}

func runCountries(cmd *cobra.Command, args []string) error {
	if codeFlag != "" {
		if !countries.IsValid(codeFlag) {
			exitWithCode(ExitNotFound, fmt.Sprintf("Country code %q not found", codeFlag))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), countries.GetName(codeFlag))
		return nil
	}

	logger.Debug("registry loaded", "countries", countries.Count())

	if namesOnly {
		for _, name := range countries.AllNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	all := countries.Default().All()

	if jsonOutput {
		entries := make([]countryEntry, len(all))
		for i, c := range all {
			entries[i] = countryEntry(c)
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	for _, c := range all {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", c.Alpha2, c.Alpha3, c.Name)
	}
	return nil
}
