package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wintermute-agent/wintermute/tool"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/%s?range=1mo&interval=1d"

func stockDataTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name: "get_stock_data",
		Description: "Fetch current price, daily OHLCV, and one-month return for a list " +
			"of stock tickers. Per-ticker failures are reported inline.",
		InputSchema: objectSchema(map[string]any{
			"tickers": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Ticker symbols, e.g. [\"AAPL\", \"NVDA\"]",
			},
		}, "tickers"),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			tickers := stringSlice(call.Inputs["tickers"])
			if len(tickers) == 0 {
				return "", tool.NewError("get_stock_data", "tickers must be a non-empty array of symbols")
			}

			var b strings.Builder
			for _, symbol := range tickers {
				quote, err := fetchQuote(ctx, deps, symbol)
				if err != nil {
					fmt.Fprintf(&b, "%s: error: %s\n", symbol, err)
					continue
				}
				b.WriteString(quote)
				b.WriteString("\n")
			}
			return strings.TrimSpace(b.String()), nil
		},
	}
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				LongName           string  `json:"longName"`
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func fetchQuote(ctx context.Context, deps Deps, symbol string) (string, error) {
	endpoint := fmt.Sprintf(yahooChartURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := deps.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var chart yahooChart
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return "", err
	}
	if chart.Chart.Error != nil {
		return "", fmt.Errorf("%s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return "", fmt.Errorf("no data available")
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	if len(quote.Close) == 0 {
		return "", fmt.Errorf("no data available")
	}

	last := len(quote.Close) - 1
	name := result.Meta.LongName
	if name == "" {
		name = result.Meta.Symbol
	}

	var monthReturn string
	if len(quote.Open) > 0 && quote.Open[0] > 0 {
		pct := (quote.Close[last] - quote.Open[0]) / quote.Open[0] * 100
		monthReturn = fmt.Sprintf("%.2f%%", pct)
	} else {
		monthReturn = "n/a"
	}

	return fmt.Sprintf("%s (%s): price %.2f %s, open %.2f, high %.2f, low %.2f, volume %d, 1mo return %s",
		name, result.Meta.Symbol, quote.Close[last], result.Meta.Currency,
		quote.Open[last], quote.High[last], quote.Low[last], quote.Volume[last], monthReturn), nil
}

// stringSlice tolerates both []string and the []any the JSON decoder yields.
func stringSlice(v any) []string {
	switch values := v.(type) {
	case []string:
		return values
	case []any:
		out := make([]string, 0, len(values))
		for _, item := range values {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
