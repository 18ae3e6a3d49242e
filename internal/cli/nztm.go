package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nzgeo/popmatch/internal/proj"
)

// nztmCmd converts NZTM2000 coordinates, as published in Stats NZ
// datasets, into the WGS84 lat/lng that OSM and the patch file use
var nztmCmd = &cobra.Command{
	Use:   "nztm <easting> <northing>",
	Short: "Convert NZTM2000 coordinates to WGS84",
	Long: `Convert a NZTM2000 easting/northing pair, the projection Stats NZ
publishes its geographies in, to a WGS84 longitude/latitude pair.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		easting, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid easting %q: %w", args[0], err)
		}
		northing, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid northing %q: %w", args[1], err)
		}

		lng, lat := proj.NZTMToWGS(easting, northing)
		fmt.Printf("%.8f, %.8f\n", lng, lat)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nztmCmd)
}
