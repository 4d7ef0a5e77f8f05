package noaa

// gridPointResponse is the subset of the NWS /points response the client
// consumes.
type gridPointResponse struct {
	Properties struct {
		ForecastHourly string `json:"forecastHourly"`
	} `json:"properties"`
}

// hourlyForecastResponse is the subset of the NWS hourly forecast response
// the client consumes. Only the first period is used.
type hourlyForecastResponse struct {
	Properties struct {
		Periods []hourlyPeriod `json:"periods"`
	} `json:"properties"`
}

type hourlyPeriod struct {
	Number          int     `json:"number"`
	StartTime       string  `json:"startTime"`
	Temperature     float64 `json:"temperature"`
	TemperatureUnit string  `json:"temperatureUnit"`
}
