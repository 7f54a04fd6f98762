package services

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/jwaldner/breakingbad/internal/models"
	"github.com/jwaldner/breakingbad/internal/pricing"
	"github.com/jwaldner/breakingbad/internal/sweep"
	"github.com/jwaldner/breakingbad/internal/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 1 << 20

// ErrBodyTooLarge is returned when a request body exceeds 1 MiB.
var ErrBodyTooLarge = errors.New("request body too large")

// RequestService handles HTTP request parsing
type RequestService struct {
	now func() time.Time
}

// NewRequestService creates a new request service
func NewRequestService() *RequestService {
	return &RequestService{now: time.Now}
}

// ParseCalculateRequest decodes and validates the calculator form.
func (s *RequestService) ParseCalculateRequest(w http.ResponseWriter, r *http.Request) (pricing.OptionInputs, error) {
	var req models.CalculateRequest
	if err := decode(w, r, &req); err != nil {
		return pricing.OptionInputs{}, err
	}
	return s.Inputs(req, true)
}

// ParseHeatMapRequest decodes the calculator form plus an optional grid; a
// zero grid means the configured default. Volatility is optional since the
// sweep overrides it.
func (s *RequestService) ParseHeatMapRequest(w http.ResponseWriter, r *http.Request) (pricing.OptionInputs, sweep.Grid, error) {
	var req models.HeatMapRequest
	if err := decode(w, r, &req); err != nil {
		return pricing.OptionInputs{}, sweep.Grid{}, err
	}
	in, err := s.Inputs(req.CalculateRequest, false)
	if err != nil {
		return pricing.OptionInputs{}, sweep.Grid{}, err
	}
	var grid sweep.Grid
	if req.Grid != nil {
		grid = *req.Grid
	}
	return in, grid, nil
}

// ParseRecommendationRequest decodes the calculator form plus both market
// prices.
func (s *RequestService) ParseRecommendationRequest(w http.ResponseWriter, r *http.Request) (in pricing.OptionInputs, marketCall, marketPut float64, err error) {
	var req models.RecommendationRequest
	if err = decode(w, r, &req); err != nil {
		return
	}

	var missing []string
	if req.MarketCallPrice == nil {
		missing = append(missing, "marketCallPrice")
	}
	if req.MarketPutPrice == nil {
		missing = append(missing, "marketPutPrice")
	}
	in, err = s.Inputs(req.CalculateRequest, true, missing...)
	if err != nil {
		return
	}
	return in, *req.MarketCallPrice, *req.MarketPutPrice, nil
}

// Inputs turns a decoded form into validated pricing inputs. extraMissing
// lets callers report their own absent fields in the same message.
func (s *RequestService) Inputs(req models.CalculateRequest, requireVolatility bool, extraMissing ...string) (pricing.OptionInputs, error) {
	var missing []string
	check := func(name string, v *float64) float64 {
		if v == nil {
			missing = append(missing, name)
			return 0
		}
		return *v
	}

	in := pricing.OptionInputs{
		StockPrice:    check("stockPrice", req.StockPrice),
		StrikePrice:   check("strikePrice", req.StrikePrice),
		InterestRate:  check("interestRate", req.InterestRate),
		DividendYield: check("dividendYield", req.DividendYield),
	}

	switch {
	case req.TimeToExpiration != nil && req.ExpirationDate != "":
		return pricing.OptionInputs{}, pricing.InvalidInput("validate", "expirationDate", "send either timeToExpiration or expirationDate, not both")
	case req.ExpirationDate != "":
		t, err := utils.YearsToExpiration(req.ExpirationDate, s.now())
		if err != nil {
			return pricing.OptionInputs{}, err
		}
		in.TimeToExpiration = t
	default:
		in.TimeToExpiration = check("timeToExpiration", req.TimeToExpiration)
	}

	if requireVolatility {
		in.Volatility = check("volatility", req.Volatility)
	} else if req.Volatility != nil {
		in.Volatility = *req.Volatility
	}

	missing = append(missing, extraMissing...)
	if len(missing) > 0 {
		return pricing.OptionInputs{}, pricing.InvalidInput("validate", missing[0],
			"All fields are required. missing: %s", strings.Join(missing, ", "))
	}
	return in, nil
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil {
		return pricing.InvalidInput("decode", "body", "request body is required")
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, tooLarge.Limit)
		}
		return pricing.InvalidInput("decode", "body", "failed to read request: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return pricing.InvalidInput("decode", "body", "failed to decode request: %v", err)
	}
	return nil
}
