package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/davidorman/scoremend/timesig"
)

var (
	verbose    bool
	policyPath string
)

var rootCmd = &cobra.Command{
	Use:   "scoremend",
	Short: "Notation consistency resolver",
	Long: `Resolves clef hypotheses and audits explicit time signatures
against the rhythmic evidence of recognized scores.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "YAML allow-list of plausible time signatures")
}

// loadPolicy resolves the --policy flag, falling back to the built-in
// allow-list.
func loadPolicy() (timesig.Policy, error) {
	if policyPath == "" {
		return timesig.DefaultPolicy(), nil
	}
	return timesig.LoadPolicy(policyPath)
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
