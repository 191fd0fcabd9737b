package medallion

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrRateUnavailable marks every failure mode of a rate lookup: transport
// errors, provider-reported errors, and unknown currencies. Callers treat it
// as a missing rate, never as 0 or 1.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// RateProvider fetches the current conversion rate between two currencies.
//
// Only current-moment rates are obtainable (the provider's free plan has no
// historical endpoint), so a run resolves each currency once and applies the
// same snapshot rate to every historical record. This is a deliberate,
// documented approximation, not an implementation shortcut: see ResolveRates.
type RateProvider interface {
	// LatestRate returns the rate such that 1 base = rate target.
	// On any failure it returns an error wrapping ErrRateUnavailable.
	LatestRate(base, target string) (decimal.Decimal, error)
}

// exchangeRateHost is the v6 endpoint of ExchangeRate-API.com.
const exchangeRateHost = "https://v6.exchangerate-api.com/v6"

// ExchangeRateAPI is the ExchangeRate-API.com implementation of RateProvider.
type ExchangeRateAPI struct {
	APIKey  string
	BaseURL string       // defaults to exchangeRateHost
	Client  *http.Client // defaults to a client with a 30s timeout
}

// NewExchangeRateAPI returns a provider for the given API credential.
func NewExchangeRateAPI(apiKey string) *ExchangeRateAPI {
	return &ExchangeRateAPI{APIKey: apiKey}
}

func (a *ExchangeRateAPI) client() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (a *ExchangeRateAPI) baseURL() string {
	if a.BaseURL != "" {
		return a.BaseURL
	}
	return exchangeRateHost
}

// LatestRate implements RateProvider against the /latest/{base} endpoint.
//
// The response is an envelope:
//
//	{
//	  "result": "success",
//	  "base_code": "KES",
//	  "conversion_rates": { "EUR": 0.0077, "USD": 0.0089, ... }
//	}
//
// or on failure:
//
//	{ "result": "error", "error-type": "invalid-key" }
func (a *ExchangeRateAPI) LatestRate(base, target string) (decimal.Decimal, error) {
	addr := fmt.Sprintf("%s/%s/latest/%s", a.baseURL(), url.PathEscape(a.APIKey), url.PathEscape(base))

	var jobj any
	if err := jwget(a.client(), addr, &jobj); err != nil {
		return decimal.Decimal{}, fmt.Errorf("fetching %s/%s rate: %v: %w", base, target, err, ErrRateUnavailable)
	}

	if result, err := jsonpath.Get("$.result", jobj); err != nil || result != "success" {
		// The provider reports failures inside a 200 response.
		errType, _ := jsonpath.Get(`$["error-type"]`, jobj)
		if errType == nil {
			errType = "unknown error"
		}
		return decimal.Decimal{}, fmt.Errorf("provider error for %s/%s rate: %v: %w", base, target, errType, ErrRateUnavailable)
	}

	jval, err := jsonpath.Get(fmt.Sprintf(`$["conversion_rates"][%q]`, target), jobj)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("no %s rate under base %s: %w", target, base, ErrRateUnavailable)
	}
	val, ok := jval.(float64)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("malformed %s rate under base %s: %v: %w", target, base, jval, ErrRateUnavailable)
	}
	return decimal.NewFromFloat(val), nil
}

// ResolveRates resolves one conversion rate to target per distinct currency
// code, in sorted order, and returns the snapshot used for the whole run.
// The target currency itself is the identity rate 1 without a network call.
// An unavailable rate yields an invalid NullDecimal and a logged warning:
// the run continues and downstream converted amounts stay explicitly missing.
func ResolveRates(p RateProvider, target string, currencies []string, log zerolog.Logger) map[string]decimal.NullDecimal {
	distinct := make(map[string]bool, len(currencies))
	for _, c := range currencies {
		distinct[c] = true
	}
	codes := make([]string, 0, len(distinct))
	for c := range distinct {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	rates := make(map[string]decimal.NullDecimal, len(codes))
	for _, code := range codes {
		if code == target {
			rates[code] = decimal.NewNullDecimal(decimal.NewFromInt(1))
			continue
		}
		rate, err := p.LatestRate(code, target)
		if err != nil {
			log.Warn().Str("currency", code).Err(err).Msg("rate unavailable, converted amounts will be missing")
			rates[code] = decimal.NullDecimal{}
			continue
		}
		log.Info().Str("currency", code).Str("rate", rate.String()).Msgf("1 %s = %s %s", code, rate, target)
		rates[code] = decimal.NewNullDecimal(rate)
	}
	return rates
}
