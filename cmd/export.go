package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/davidorman/scoremend/midi"
	"github.com/davidorman/scoremend/model"
	"github.com/davidorman/scoremend/score"
	"github.com/davidorman/scoremend/timesig"
)

var noAudit bool

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().BoolVar(&noAudit, "no-audit", false, "export the signatures as recognized, without auditing")
}

var exportCmd = &cobra.Command{
	Use:   "export <score.json> <out.mid>",
	Short: "Exports the audited meter map as a MIDI file",
	Long:  `Exports the audited meter map as a MIDI file`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var f model.ScoreFile
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("parse score file %s: %w", args[0], err)
		}
		page, err := score.Build(&f)
		if err != nil {
			return err
		}

		if !noAudit {
			policy, err := loadPolicy()
			if err != nil {
				return err
			}
			page.ResolveClefs()
			timesig.NewAuditor(policy).Audit(page)
		}

		if err := midi.Export(page, args[1]); err != nil {
			return err
		}
		fmt.Printf("Wrote %v\n", args[1])
		return nil
	},
}
