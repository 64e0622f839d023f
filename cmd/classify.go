package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidorman/scoremend/clef"
	"github.com/davidorman/scoremend/model"
	"github.com/davidorman/scoremend/util"
)

func init() {
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify <sharp|flat> <p1> ... <p7>",
	Short: "Classifies a clef from measured accidental pitches",
	Long: `Fits the seven measured key-signature pitch positions against each
clef kind's reference row. Use "-" for an unmeasured slot.`,
	Args: cobra.ExactArgs(8),
	RunE: func(cmd *cobra.Command, args []string) error {
		var shape model.Shape
		switch strings.ToLower(args[0]) {
		case "sharp":
			shape = model.ShapeSharp
		case "flat":
			shape = model.ShapeFlat
		default:
			return fmt.Errorf("shape must be sharp or flat, got %q", args[0])
		}

		var measured [7]*float64
		for i, arg := range args[1:] {
			if arg == "-" {
				continue
			}
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return fmt.Errorf("pitch %d: %w", i+1, err)
			}
			measured[i] = &v
		}

		kind, errors, ok := clef.GuessKind(shape, measured)

		kinds := util.GetKeys(errors)
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		for _, k := range kinds {
			fmt.Printf("%v: %.4f\n", k, errors[k])
		}

		if !ok {
			fmt.Println("No clef kind could be determined")
			return nil
		}
		fmt.Printf("Best: %v\n", kind)
		return nil
	},
}
