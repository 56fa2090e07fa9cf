package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

var weatherHTTP = &http.Client{Timeout: 10 * time.Second}

// CurrentWeather is the trimmed OpenWeatherMap response surfaced to clients.
type CurrentWeather struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	Humidity    int     `json:"humidity"`
	Weather     string  `json:"weather"`
}

// FetchCurrentWeather proxies the OpenWeatherMap current-weather endpoint.
// Cities without a country code default to India.
func FetchCurrentWeather(city string) (*CurrentWeather, error) {
	if !strings.Contains(city, ",") {
		city = city + ",IN"
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", os.Getenv("OPENWEATHER_API_KEY"))
	params.Set("units", "metric")

	res, err := weatherHTTP.Get("https://api.openweathermap.org/data/2.5/weather?" + params.Encode())
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != 200 {
		return nil, fmt.Errorf("weather api returned status %d", res.StatusCode)
	}

	var data struct {
		Name string `json:"name"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	}
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return nil, err
	}

	weather := ""
	if len(data.Weather) > 0 {
		weather = data.Weather[0].Description
	}

	return &CurrentWeather{
		Location:    data.Name,
		Temperature: data.Main.Temp,
		Humidity:    data.Main.Humidity,
		Weather:     weather,
	}, nil
}
