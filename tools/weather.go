package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/wintermute-agent/wintermute/tool"
)

const wttrURL = "https://wttr.in/%s?format=j1"

func weatherTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name:        "get_weather",
		Description: "Get current weather conditions for a location. No API key required.",
		InputSchema: objectSchema(map[string]any{
			"location": stringProp("City or place name, e.g. 'Berlin' or 'Tokyo'"),
		}, "location"),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			return currentWeather(ctx, deps, call.String("location"))
		},
	}
}

func currentWeather(ctx context.Context, deps Deps, location string) (string, error) {
	endpoint := fmt.Sprintf(wttrURL, url.PathEscape(location))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", tool.WrapError("get_weather", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := deps.HTTPClient.Do(req)
	if err != nil {
		return "", tool.WrapError("get_weather", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", tool.NewError("get_weather", fmt.Sprintf("weather service status %d", resp.StatusCode))
	}

	var report struct {
		CurrentCondition []struct {
			TempC       string `json:"temp_C"`
			FeelsLikeC  string `json:"FeelsLikeC"`
			Humidity    string `json:"humidity"`
			WindKmph    string `json:"windspeedKmph"`
			WeatherDesc []struct {
				Value string `json:"value"`
			} `json:"weatherDesc"`
		} `json:"current_condition"`
		NearestArea []struct {
			AreaName []struct {
				Value string `json:"value"`
			} `json:"areaName"`
		} `json:"nearest_area"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return "", tool.WrapError("get_weather", err)
	}
	if len(report.CurrentCondition) == 0 {
		return "", tool.NewError("get_weather", "no current conditions in response")
	}

	current := report.CurrentCondition[0]
	area := location
	if len(report.NearestArea) > 0 && len(report.NearestArea[0].AreaName) > 0 {
		area = report.NearestArea[0].AreaName[0].Value
	}
	condition := ""
	if len(current.WeatherDesc) > 0 {
		condition = current.WeatherDesc[0].Value
	}

	return fmt.Sprintf("%s: %s, %s°C (feels like %s°C), humidity %s%%, wind %s km/h",
		area, condition, current.TempC, current.FeelsLikeC, current.Humidity, current.WindKmph), nil
}
