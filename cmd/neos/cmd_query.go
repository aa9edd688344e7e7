package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chalu/neos/internal/filters"
	"github.com/chalu/neos/internal/writer"
)

func queryCmd() *cobra.Command {
	var (
		date         string
		startDate    string
		endDate      string
		distanceMin  float64
		distanceMax  float64
		velocityMin  float64
		velocityMax  float64
		diameterMin  float64
		diameterMax  float64
		hazardous    bool
		notHazardous bool
		limit        int
		outfile      string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query close approaches matching the given criteria",
		Long:  "Query close approaches that match all of the supplied criteria, in dataset order. With no criteria every close approach matches. Results go to stdout as human-readable lines, or to --outfile as CSV or JSON depending on its extension.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if hazardous && notHazardous {
				return fmt.Errorf("query: --hazardous and --not-hazardous are mutually exclusive")
			}

			criteria, err := buildCriteria(cmd, date, startDate, endDate,
				distanceMin, distanceMax, velocityMin, velocityMax,
				diameterMin, diameterMax, hazardous, notHazardous)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			logger := newLogger()
			db, err := loadDatabase(logger)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			fs := filters.Build(criteria)
			logger.Debug("running query", "query_id", uuid.NewString(), "filters", len(fs), "limit", limit)
			results := filters.Limit(db.Query(fs), limit)

			switch ext := filepath.Ext(outfile); {
			case outfile == "":
				count := 0
				for ca := range results {
					fmt.Println(describeApproach(ca))
					count++
				}
				if count == 0 {
					fmt.Println("No matching close approaches.")
				}
				return nil
			case ext == ".csv":
				f, err := os.Create(outfile)
				if err != nil {
					return fmt.Errorf("query: creating output file: %w", err)
				}
				defer func() { _ = f.Close() }()
				return writer.WriteCSV(f, results)
			case ext == ".json":
				f, err := os.Create(outfile)
				if err != nil {
					return fmt.Errorf("query: creating output file: %w", err)
				}
				defer func() { _ = f.Close() }()
				return writer.WriteJSON(f, results)
			default:
				return fmt.Errorf("query: unsupported output extension %q (use .csv or .json)", ext)
			}
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "only approaches on this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&startDate, "start-date", "", "only approaches on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "only approaches on or before this date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&distanceMin, "min-distance", 0, "minimum approach distance in au")
	cmd.Flags().Float64Var(&distanceMax, "max-distance", 0, "maximum approach distance in au")
	cmd.Flags().Float64Var(&velocityMin, "min-velocity", 0, "minimum relative velocity in km/s")
	cmd.Flags().Float64Var(&velocityMax, "max-velocity", 0, "maximum relative velocity in km/s")
	cmd.Flags().Float64Var(&diameterMin, "min-diameter", 0, "minimum NEO diameter in km")
	cmd.Flags().Float64Var(&diameterMax, "max-diameter", 0, "maximum NEO diameter in km")
	cmd.Flags().BoolVar(&hazardous, "hazardous", false, "only approaches of potentially hazardous NEOs")
	cmd.Flags().BoolVar(&notHazardous, "not-hazardous", false, "only approaches of non-hazardous NEOs")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results (0 = unlimited)")
	cmd.Flags().StringVarP(&outfile, "outfile", "o", "", "write results to this .csv or .json file instead of stdout")
	return cmd
}

// buildCriteria translates the command flags into filter criteria. Numeric
// flags count only when explicitly set, so a literal 0 is a usable bound.
func buildCriteria(cmd *cobra.Command, date, startDate, endDate string,
	distanceMin, distanceMax, velocityMin, velocityMax, diameterMin, diameterMax float64,
	hazardous, notHazardous bool,
) (filters.Criteria, error) {
	var c filters.Criteria

	parse := func(raw string) (*time.Time, error) {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", raw)
		}
		return &t, nil
	}

	var err error
	if date != "" {
		if c.Date, err = parse(date); err != nil {
			return c, err
		}
	}
	if startDate != "" {
		if c.StartDate, err = parse(startDate); err != nil {
			return c, err
		}
	}
	if endDate != "" {
		if c.EndDate, err = parse(endDate); err != nil {
			return c, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("min-distance") {
		c.DistanceMin = &distanceMin
	}
	if changed("max-distance") {
		c.DistanceMax = &distanceMax
	}
	if changed("min-velocity") {
		c.VelocityMin = &velocityMin
	}
	if changed("max-velocity") {
		c.VelocityMax = &velocityMax
	}
	if changed("min-diameter") {
		c.DiameterMin = &diameterMin
	}
	if changed("max-diameter") {
		c.DiameterMax = &diameterMax
	}

	if hazardous {
		t := true
		c.Hazardous = &t
	}
	if notHazardous {
		f := false
		c.Hazardous = &f
	}

	return c, nil
}
