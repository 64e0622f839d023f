package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/davidorman/scoremend/model"
	"github.com/davidorman/scoremend/rational"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <score.json>",
	Short: "Prints a summary of a recognized score file",
	Long:  `Prints a summary of a recognized score file`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(args[0])
	},
}

func inspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f model.ScoreFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse score file %s: %w", path, err)
	}

	fmt.Printf("score: %v %v\n", f.ID, f.Title)
	inferences := make(map[rational.Rational]int)

	for _, part := range f.Parts {
		fmt.Printf("part %q: %v staves, %v measures\n", part.Name, len(part.Staves), len(part.Measures))
		for si, staff := range part.Staves {
			clefDesc := "none"
			if staff.Clef != nil {
				clefDesc = string(staff.Clef.Shape)
			}
			if staff.ResolvedClef != "" {
				clefDesc += " -> " + staff.ResolvedClef
			}
			fmt.Printf("  staff %v: clef %v\n", si+1, clefDesc)
		}
		for mi, m := range part.Measures {
			for si, sig := range m.TimeSigs {
				if sig == nil {
					continue
				}
				manual := ""
				if sig.Manual {
					manual = " (manual)"
				}
				fmt.Printf("  measure %v staff %v: %v/%v%s\n", mi+1, si+1, sig.Num, sig.Den, manual)
			}
			for _, v := range m.Voices {
				if v.Inferred != nil {
					inferences[*v.Inferred]++
				}
			}
		}
	}

	sigs := make([]rational.Rational, 0, len(inferences))
	for sig := range inferences {
		sigs = append(sigs, sig)
	}
	sort.Slice(sigs, func(i, j int) bool {
		return inferences[sigs[i]] > inferences[sigs[j]]
	})
	fmt.Println("voice inferences:")
	for _, sig := range sigs {
		fmt.Printf("  %v: %v\n", sig, inferences[sig])
	}
	return nil
}
