package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dataset statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			db, err := loadDatabase(logger)
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}

			s := db.Stats()
			fmt.Printf("Near-Earth objects: %d\n", s.NEOs)
			fmt.Printf("  named:            %d\n", s.NamedNEOs)
			fmt.Printf("  hazardous:        %d\n", s.Hazardous)
			fmt.Printf("Close approaches:   %d\n", s.Approaches)
			fmt.Printf("  linked:           %d\n", s.Linked)
			fmt.Printf("  unlinked:         %d\n", s.Unlinked)
			return nil
		},
	}
}
