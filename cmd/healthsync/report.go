package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/feed"
	"github.com/SahinShazi/HealthSync/internal/report"
)

func newReportCmd() *cobra.Command {
	var (
		ticks  int
		seed   uint64
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a health report after simulating feed updates",
		Long: `Report advances the simulated patient feed by --ticks updates and prints
the same text the dashboard offers for download. With --json it prints the
final snapshot instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ticks < 0 {
				return errors.New("--ticks must not be negative")
			}
			now := time.Now()
			if seed == 0 {
				seed = uint64(now.UnixNano())
			}
			patient := internal.DemoPatient()
			record := feed.NewRecord(patient.ID, now)
			rng := rand.New(rand.NewPCG(seed, 2040))
			snap := record.Snapshot()
			for i := 0; i < ticks; i++ {
				snap = record.Tick(rng, now)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}
			_, err := fmt.Fprintln(out, report.Generate(patient, snap, now))
			return err
		},
	}
	cmd.Flags().IntVar(&ticks, "ticks", 0, "number of simulated updates to apply")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	return cmd
}
