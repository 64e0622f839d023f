package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/davidorman/scoremend/constants"
	"github.com/davidorman/scoremend/model"
	"github.com/davidorman/scoremend/rational"
	"github.com/davidorman/scoremend/score"
	"github.com/davidorman/scoremend/timesig"
	"github.com/davidorman/scoremend/util"
)

var dryRun bool

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report corrections without rewriting the file")
}

var auditCmd = &cobra.Command{
	Use:   "audit <score.json>",
	Short: "Audits a recognized score file",
	Long: `Resolves clefs, audits the explicit time signatures against the
voice evidence and rewrites the file in place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := runAudit(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Resolved %v clefs, corrected %v time signatures (modified=%v)\n",
			report.ResolvedClefs, len(report.Corrections), report.Modified)
		for _, c := range report.Corrections {
			fmt.Printf("  measure %v %v staff %v: %v -> %v\n", c.Measure, c.Part, c.Staff, c.From, c.To)
		}
		return nil
	},
}

func runAudit(path string) (*model.AuditReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read score file: %w", err)
	}
	var f model.ScoreFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse score file %s: %w", path, err)
	}

	page, err := score.Build(&f)
	if err != nil {
		return nil, fmt.Errorf("build score %s: %w", path, err)
	}

	policy, err := loadPolicy()
	if err != nil {
		return nil, err
	}

	resolved := page.ResolveClefs()
	modified := timesig.NewAuditor(policy).Audit(page)
	out := page.DTO()

	report := &model.AuditReport{
		ScoreID:       f.ID,
		Path:          path,
		Modified:      modified,
		ResolvedClefs: resolved,
		Corrections:   diffCorrections(&f, &out),
		When:          time.Now(),
	}

	if !dryRun {
		outData, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode score file: %w", err)
		}
		outData = append(outData, '\n')
		if !bytes.Equal(data, outData) {
			if err := os.WriteFile(path, outData, 0666); err != nil {
				return nil, fmt.Errorf("rewrite score file: %w", err)
			}
		}

		util.EnsureOutputDir(constants.GetOutDir())
		reportPath := filepath.Join(constants.GetOutDir(), uuid.New().String()+".report.dat")
		util.CreateBinary(reportPath, report)
	}

	return report, nil
}

// diffCorrections lists the explicit signatures whose values changed
// between the recognized input and the audited output.
func diffCorrections(before, after *model.ScoreFile) []model.Correction {
	var res []model.Correction
	for pi := range before.Parts {
		if pi >= len(after.Parts) {
			break
		}
		bp, ap := &before.Parts[pi], &after.Parts[pi]
		for mi := range bp.Measures {
			if mi >= len(ap.Measures) {
				break
			}
			bm, am := &bp.Measures[mi], &ap.Measures[mi]
			for si := range bm.TimeSigs {
				if si >= len(am.TimeSigs) || bm.TimeSigs[si] == nil || am.TimeSigs[si] == nil {
					continue
				}
				b, a := bm.TimeSigs[si], am.TimeSigs[si]
				if b.Num == a.Num && b.Den == a.Den {
					continue
				}
				from, err := rational.New(b.Num, b.Den)
				if err != nil {
					continue
				}
				to, err := rational.New(a.Num, a.Den)
				if err != nil {
					continue
				}
				res = append(res, model.Correction{
					Measure: mi + 1,
					Part:    bp.Name,
					Staff:   si + 1,
					From:    from,
					To:      to,
				})
			}
		}
	}
	return res
}
