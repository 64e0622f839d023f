package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/spf13/cobra"

	"github.com/davidorman/scoremend/constants"
	"github.com/davidorman/scoremend/model"
	"github.com/davidorman/scoremend/rational"
	"github.com/davidorman/scoremend/util"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregates past audit reports",
	Long:  `Aggregates past audit reports`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return report()
	},
}

func report() error {
	files, err := os.ReadDir(constants.GetOutDir())
	if err != nil {
		return fmt.Errorf("could not read out dir: %w", err)
	}

	r, _ := regexp.Compile(`^[0-9a-fA-F]{8}-([0-9a-fA-F]{4}-){3}[0-9a-fA-F]{12}\.report\.dat$`)

	var numReports, numModified int64
	var corrections []int64
	targets := make(map[rational.Rational]int)

	for _, file := range files {
		filename := file.Name()
		if !r.MatchString(filename) {
			continue
		}
		rep := util.ReadBinaryOrPanic[model.AuditReport](filepath.Join(constants.GetOutDir(), filename))
		numReports++
		if rep.Modified {
			numModified++
		}
		corrections = append(corrections, int64(len(rep.Corrections)))
		for _, c := range rep.Corrections {
			targets[c.To]++
		}
	}

	fmt.Printf("reports: %v\n", numReports)
	fmt.Printf("modified scores: %v\n", numModified)
	fmt.Printf("total corrections: %v\n", util.Sum(corrections))

	sigs := make([]rational.Rational, 0, len(targets))
	for sig := range targets {
		sigs = append(sigs, sig)
	}
	sort.Slice(sigs, func(i, j int) bool {
		return targets[sigs[i]] > targets[sigs[j]]
	})
	for _, sig := range sigs {
		fmt.Printf("  corrected to %v: %v\n", sig, targets[sig])
	}
	return nil
}
