package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type WeatherInput struct {
	Location  WeatherLocation `json:"location"`
	DateRange DateRange       `json:"date_range"`
}

type WeatherLocation struct {
	City        string       `json:"city" jsonschema_description:"City name"`
	Country     string       `json:"country,omitempty" jsonschema_description:"Country name"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

type DateRange struct {
	StartDate string `json:"start_date" jsonschema:"format=date"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"format=date"`
}

// Forecast is the tool_weather result.
type Forecast struct {
	Location string         `json:"location"`
	Date     string         `json:"date"`
	Forecast ForecastDetail `json:"forecast"`
}

type ForecastDetail struct {
	Temperature int     `json:"temperature"`
	Conditions  string  `json:"conditions"`
	Confidence  float64 `json:"confidence"`
}

var WeatherDefinition = ToolDefinition{
	Name:        "tool_weather",
	Description: "Get detailed weather forecast for a specific location and date range",
	InputSchema: WeatherInputSchema,
	Function:    Weather,
}

var WeatherInputSchema = GenerateSchema[WeatherInput]()

const dateLayout = "2006-01-02"

// Weather returns the forecast for the city on the start date. The provider is a fixed
// table for now: every day in every city is sunny and 22 degrees.
func Weather(_ context.Context, input json.RawMessage) (string, error) {
	in, err := decodeInput[WeatherInput](input, WeatherInputSchema.Required)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(in.Location.City) == "" {
		return "", fmt.Errorf("%w: location.city is required", ErrInvalidArguments)
	}
	if _, err := time.Parse(dateLayout, in.DateRange.StartDate); err != nil {
		return "", fmt.Errorf("%w: date_range.start_date %q is not a YYYY-MM-DD date", ErrInvalidArguments, in.DateRange.StartDate)
	}

	return render(Forecast{
		Location: in.Location.City,
		Date:     in.DateRange.StartDate,
		Forecast: ForecastDetail{Temperature: 22, Conditions: "Sunny", Confidence: 0.95},
	})
}
