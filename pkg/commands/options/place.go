package options

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/model"
)

// PlaceOptions holds the study place flags.
type PlaceOptions struct {
	Name      string
	Type      string
	Custom    string
	State     string
	Country   string
	Latitude  float64
	Longitude float64
	Query     string
}

func AddPlaceArgs(cmd *cobra.Command, o *PlaceOptions) {
	cmd.Flags().StringVar(&o.Name, "name", "", "Place name.")
	cmd.Flags().StringVarP(&o.Type, "type", "t", "library",
		"Place type. One of "+strings.Join(model.StudyPlaceTypes, ", ")+".")
	cmd.Flags().StringVar(&o.Custom, "custom", "", `Custom type used when --type=other.`)
	cmd.Flags().StringVar(&o.State, "state", "", "State or region.")
	cmd.Flags().StringVar(&o.Country, "country", "", "Country.")
	cmd.Flags().Float64Var(&o.Latitude, "lat", 0, "Latitude in degrees.")
	cmd.Flags().Float64Var(&o.Longitude, "lon", 0, "Longitude in degrees.")
	cmd.Flags().StringVarP(&o.Query, "query", "q", "", "Search for the location instead of giving coordinates.")
}

// Input returns the place described by the flags.
func (o *PlaceOptions) Input() app.PlaceInput {
	return app.PlaceInput{
		Name:      o.Name,
		Type:      o.Type,
		Custom:    o.Custom,
		State:     o.State,
		Country:   o.Country,
		Latitude:  o.Latitude,
		Longitude: o.Longitude,
	}
}
