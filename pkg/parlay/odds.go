package parlay

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidOdds        = errors.New("invalid odds")
	ErrNoPayout           = errors.New("decimal odds have no payout")
	ErrInvalidProbability = errors.New("invalid probability")
	ErrInvalidConfig      = errors.New("invalid strategy config")
	ErrInvalidFight       = errors.New("invalid fight")
	ErrMissingWinner      = errors.New("missing winner")
)

// IsValidationError reports whether err came from input validation
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidOdds) ||
		errors.Is(err, ErrNoPayout) ||
		errors.Is(err, ErrInvalidProbability) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrInvalidFight) ||
		errors.Is(err, ErrMissingWinner)
}

// ValidateOdds checks an American price: non-zero with magnitude of at least 100
func ValidateOdds(odds int) error {
	if odds > -100 && odds < 100 {
		return fmt.Errorf("%w: %d", ErrInvalidOdds, odds)
	}
	return nil
}

// AmericanToDecimal converts American odds to decimal odds
// Example: +150 = 2.50, -200 = 1.50
func AmericanToDecimal(odds int) (float64, error) {
	if err := ValidateOdds(odds); err != nil {
		return 0, err
	}
	return americanToDecimal(odds), nil
}

// maxAmericanOdds bounds the magnitude of a converted price so it fits any int
const maxAmericanOdds = math.MaxInt32

// DecimalToAmerican converts decimal odds to American odds.
// Prices of 1.0 or less pay nothing and return ErrNoPayout; prices whose American
// magnitude exceeds maxAmericanOdds return ErrInvalidOdds.
func DecimalToAmerican(d float64) (int, error) {
	if err := validateDecimal(d); err != nil {
		return 0, err
	}
	var american float64
	if d >= 2.0 {
		american = math.Round((d - 1) * 100)
	} else {
		american = -math.Round(100 / (d - 1))
	}
	if math.Abs(american) > maxAmericanOdds {
		return 0, fmt.Errorf("%w: decimal %g is out of range", ErrInvalidOdds, d)
	}
	return int(american), nil
}

// DecimalImpliedProbability converts decimal odds to the market's win probability (vig included)
func DecimalImpliedProbability(d float64) (float64, error) {
	if err := validateDecimal(d); err != nil {
		return 0, err
	}
	return 1 / d, nil
}

func validateDecimal(d float64) error {
	if math.IsNaN(d) || d <= 1.0 {
		return fmt.Errorf("%w: %.4f", ErrNoPayout, d)
	}
	if math.IsInf(d, 0) {
		return fmt.Errorf("%w: decimal odds must be finite", ErrInvalidOdds)
	}
	return nil
}

// ImpliedProbability converts American odds to the market's win probability (vig included)
func ImpliedProbability(odds int) (float64, error) {
	if err := ValidateOdds(odds); err != nil {
		return 0, err
	}
	return impliedProbability(odds), nil
}

// callers validate odds first
func americanToDecimal(odds int) float64 {
	if odds > 0 {
		return 1 + float64(odds)/100
	}
	return 1 + 100/math.Abs(float64(odds))
}

func impliedProbability(odds int) float64 {
	if odds > 0 {
		return 100 / (float64(odds) + 100)
	}
	abs := math.Abs(float64(odds))
	return abs / (abs + 100)
}
