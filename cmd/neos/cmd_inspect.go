package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/chalu/neos/internal/metrics"
	"github.com/chalu/neos/internal/models"
)

func inspectCmd() *cobra.Command {
	var (
		pdes    string
		name    string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect a single NEO by designation or by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pdes == "" && name == "" {
				return fmt.Errorf("inspect: one of --pdes or --name is required")
			}

			logger := newLogger()
			db, err := loadDatabase(logger)
			if err != nil {
				return fmt.Errorf("inspect: %w", err)
			}

			metrics.Inc(metrics.LookupsTotal)
			var neo *models.NearEarthObject
			if pdes != "" {
				neo = db.FindByDesignation(pdes)
			} else {
				neo = db.FindByName(name)
			}
			if neo == nil {
				return fmt.Errorf("inspect: no matching NEO found")
			}

			printNEO(neo)
			if verbose {
				for _, ca := range neo.Approaches {
					fmt.Printf("- %s\n", describeApproach(ca))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&pdes, "pdes", "p", "", "primary designation of the NEO")
	cmd.Flags().StringVarP(&name, "name", "n", "", "IAU name of the NEO")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also list the NEO's close approaches")
	return cmd
}

func printNEO(neo *models.NearEarthObject) {
	switch {
	case math.IsNaN(neo.Diameter) && neo.Hazardous:
		fmt.Printf("NEO %s is potentially hazardous; its diameter is unknown.\n", neo.Fullname())
	case math.IsNaN(neo.Diameter):
		fmt.Printf("NEO %s is not potentially hazardous; its diameter is unknown.\n", neo.Fullname())
	case neo.Hazardous:
		fmt.Printf("NEO %s has a diameter of %.3f km and is potentially hazardous.\n", neo.Fullname(), neo.Diameter)
	default:
		fmt.Printf("NEO %s has a diameter of %.3f km and is not potentially hazardous.\n", neo.Fullname(), neo.Diameter)
	}
}

func describeApproach(ca *models.CloseApproach) string {
	who := ca.Designation
	if ca.NEO != nil {
		who = ca.NEO.Fullname()
	}
	return fmt.Sprintf("On %s, %s approaches Earth at a distance of %.2f au and a velocity of %.2f km/s.",
		ca.TimeStr(), who, ca.Distance, ca.Velocity)
}
