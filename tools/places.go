package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/anthropics/anthropic-sdk-go"
	"googlemaps.github.io/maps"
)

// ErrPlacesUnavailable is returned when the places tool has no usable upstream client.
var ErrPlacesUnavailable = errors.New("places search unavailable")

type PlacesInput struct {
	Location  GeoPoint `json:"location" jsonschema_description:"Geographic coordinates of the search center point"`
	Radius    int      `json:"radius" jsonschema:"minimum=1,maximum=50000" jsonschema_description:"Search radius in meters"`
	PlaceType string   `json:"place_type" jsonschema_description:"Type of place to search for (e.g., restaurant, cafe, park)"`
}

type GeoPoint struct {
	Latitude  float64 `json:"latitude" jsonschema:"minimum=-90,maximum=90" jsonschema_description:"Latitude coordinate of the center point"`
	Longitude float64 `json:"longitude" jsonschema:"minimum=-180,maximum=180" jsonschema_description:"Longitude coordinate of the center point"`
}

// Place is the compact form of a nearby search hit handed back to the model.
type Place struct {
	Name     string   `json:"name"`
	Vicinity string   `json:"vicinity,omitempty"`
	Rating   float32  `json:"rating,omitempty"`
	PlaceID  string   `json:"place_id,omitempty"`
	Types    []string `json:"types,omitempty"`
}

// PlaceTypes are the Google Places types accepted by tool_places_nearby.
var PlaceTypes = []string{
	"accounting", "airport", "amusement_park", "aquarium", "art_gallery",
	"atm", "bakery", "bank", "bar", "beauty_salon", "bicycle_store",
	"book_store", "bowling_alley", "bus_station", "cafe", "campground",
	"car_dealer", "car_rental", "car_repair", "car_wash", "casino",
	"cemetery", "church", "city_hall", "clothing_store", "convenience_store",
	"courthouse", "dentist", "department_store", "doctor", "drugstore",
	"electrician", "electronics_store", "embassy", "fire_station", "florist",
	"funeral_home", "furniture_store", "gas_station", "gym", "hair_care",
	"hardware_store", "hindu_temple", "home_goods_store", "hospital",
	"insurance_agency", "jewelry_store", "laundry", "lawyer", "library",
	"light_rail_station", "liquor_store", "local_government_office",
	"locksmith", "lodging", "meal_delivery", "meal_takeaway", "mosque",
	"movie_rental", "movie_theater", "moving_company", "museum", "night_club",
	"painter", "park", "parking", "pet_store", "pharmacy", "physiotherapist",
	"plumber", "police", "post_office", "primary_school", "real_estate_agency",
	"restaurant", "roofing_contractor", "rv_park", "school", "secondary_school",
	"shoe_store", "shopping_mall", "spa", "stadium", "storage", "store",
	"subway_station", "supermarket", "synagogue", "taxi_stand",
	"tourist_attraction", "train_station", "transit_station", "travel_agency",
	"university", "veterinary_care", "zoo",
}

var PlacesInputSchema = placesSchema()

func placesSchema() anthropic.ToolInputSchemaParam {
	s := reflectSchema[PlacesInput]()
	if prop, ok := s.Properties.Get("place_type"); ok {
		prop.Enum = make([]any, len(PlaceTypes))
		for i, t := range PlaceTypes {
			prop.Enum[i] = t
		}
	}
	return inputSchema(s)
}

// NewPlacesDefinition returns tool_places_nearby backed by the Google Places Nearby
// Search API. An empty apiKey still registers the tool; invocations then fail with
// ErrPlacesUnavailable so the model can tell the user.
func NewPlacesDefinition(apiKey string, opts ...maps.ClientOption) ToolDefinition {
	p := &placesTool{}
	if apiKey == "" {
		p.err = fmt.Errorf("%w: GOOGLE_MAPS_API_KEY is not set", ErrPlacesUnavailable)
	} else {
		p.client, p.err = maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
		if p.err != nil {
			p.err = fmt.Errorf("%w: %v", ErrPlacesUnavailable, p.err)
		}
	}

	return ToolDefinition{
		Name:        "tool_places_nearby",
		Description: "Search for places of a specific type within a given radius of a location using Google Places API",
		InputSchema: PlacesInputSchema,
		Function:    p.search,
	}
}

type placesTool struct {
	client *maps.Client
	err    error
}

func (p *placesTool) search(ctx context.Context, input json.RawMessage) (string, error) {
	in, err := decodeInput[PlacesInput](input, PlacesInputSchema.Required)
	if err != nil {
		return "", err
	}
	if err := in.validate(); err != nil {
		return "", err
	}
	if p.err != nil {
		return "", p.err
	}

	resp, err := p.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: in.Location.Latitude, Lng: in.Location.Longitude},
		Radius:   uint(in.Radius),
		Type:     maps.PlaceType(in.PlaceType),
	})
	if err != nil {
		return "", fmt.Errorf("nearby search: %w", err)
	}

	places := make([]Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		places = append(places, Place{
			Name:     r.Name,
			Vicinity: r.Vicinity,
			Rating:   r.Rating,
			PlaceID:  r.PlaceID,
			Types:    r.Types,
		})
	}
	return render(places)
}

func (in PlacesInput) validate() error {
	switch {
	case in.Location.Latitude < -90 || in.Location.Latitude > 90:
		return fmt.Errorf("%w: latitude %g outside [-90, 90]", ErrInvalidArguments, in.Location.Latitude)
	case in.Location.Longitude < -180 || in.Location.Longitude > 180:
		return fmt.Errorf("%w: longitude %g outside [-180, 180]", ErrInvalidArguments, in.Location.Longitude)
	case in.Radius < 1 || in.Radius > 50000:
		return fmt.Errorf("%w: radius %d outside [1, 50000]", ErrInvalidArguments, in.Radius)
	case !slices.Contains(PlaceTypes, in.PlaceType):
		return fmt.Errorf("%w: unsupported place_type %q", ErrInvalidArguments, in.PlaceType)
	}
	return nil
}
