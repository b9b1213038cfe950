package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	PrizeCash   = "cash"
	PrizePoints = "points"
	PrizeNone   = "none"
)

// Prize is the tagged prize variant used everywhere past the JSON boundary.
// Clients report wheel/scratch outcomes in a few historical shapes (bare
// numeric amount, string with a points suffix, explicit points field); all of
// them are normalised into this struct at decode time.
type Prize struct {
	Kind   string          `json:"kind"`
	Amount decimal.Decimal `json:"amount,omitempty"`
	Points int64           `json:"points,omitempty"`
	Label  string          `json:"label,omitempty"`
}

func CashPrize(amount decimal.Decimal) Prize {
	return Prize{Kind: PrizeCash, Amount: amount}
}

func PointsPrize(points int64) Prize {
	return Prize{Kind: PrizePoints, Points: points}
}

func NoPrize() Prize {
	return Prize{Kind: PrizeNone}
}

func (p *Prize) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == `""` || trimmed == "0" {
		*p = NoPrize()
		return nil
	}

	var raw struct {
		Kind   string          `json:"kind"`
		Amount json.RawMessage `json:"amount"`
		Points *int64          `json:"points"`
		Label  string          `json:"label"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unable to parse prize payload: %w", err)
	}

	out := Prize{Kind: raw.Kind, Label: raw.Label}

	if len(raw.Amount) > 0 {
		kind, amount, points, err := decodePrizeAmount(raw.Amount)
		if err != nil {
			return err
		}
		if out.Kind == "" {
			out.Kind = kind
		}
		out.Amount = amount
		if points != 0 {
			out.Points = points
		}
	}

	if raw.Points != nil {
		out.Points = *raw.Points
		if out.Kind == "" {
			out.Kind = PrizePoints
		}
	}

	switch out.Kind {
	case PrizeCash:
		if out.Amount.Sign() <= 0 {
			*p = NoPrize()
			return nil
		}
	case PrizePoints:
		if out.Points <= 0 {
			*p = NoPrize()
			return nil
		}
		out.Amount = decimal.Zero
	case "":
		*p = NoPrize()
		return nil
	case PrizeNone:
		*p = NoPrize()
		return nil
	default:
		return fmt.Errorf("unknown prize kind %q", out.Kind)
	}

	*p = out
	return nil
}

// decodePrizeAmount accepts a JSON number, a numeric string, or a legacy
// "<n> points"/"<n> ringtones" string and reports the variant it denotes.
func decodePrizeAmount(data json.RawMessage) (kind string, amount decimal.Decimal, points int64, err error) {
	var f decimal.Decimal
	if err := json.Unmarshal(data, &f); err == nil {
		return PrizeCash, f, 0, nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", decimal.Zero, 0, fmt.Errorf("unable to parse prize amount %s", string(data))
	}

	s = strings.TrimSpace(strings.ToLower(s))
	if strings.Contains(s, "point") || strings.Contains(s, "ringtone") {
		numeric := strings.Fields(s)
		if len(numeric) == 0 {
			return "", decimal.Zero, 0, fmt.Errorf("unable to parse points prize %q", s)
		}
		n, perr := strconv.ParseInt(numeric[0], 10, 64)
		if perr != nil {
			return "", decimal.Zero, 0, fmt.Errorf("unable to parse points prize %q", s)
		}
		return PrizePoints, decimal.Zero, n, nil
	}

	d, derr := decimal.NewFromString(s)
	if derr != nil {
		return "", decimal.Zero, 0, fmt.Errorf("unable to parse prize amount %q", s)
	}
	return PrizeCash, d, 0, nil
}

// Matches reports whether the declared prize is the same payout as a prize
// table entry. Labels are display-only and ignored.
func (p Prize) Matches(other Prize) bool {
	if p.Kind != other.Kind {
		return false
	}
	switch p.Kind {
	case PrizeCash:
		return p.Amount.Equal(other.Amount)
	case PrizePoints:
		return p.Points == other.Points
	default:
		return true
	}
}

// Describe renders the prize for Winner records and API responses.
func (p Prize) Describe() string {
	if p.Label != "" {
		return p.Label
	}
	switch p.Kind {
	case PrizeCash:
		return p.Amount.StringFixed(2)
	case PrizePoints:
		return fmt.Sprintf("%d ringtone points", p.Points)
	default:
		return "no prize"
	}
}

// ParsePrizeTable decodes a competition's stored prize table.
func ParsePrizeTable(data datatypes.JSON) ([]Prize, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var table []Prize
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("invalid prize table: %w", err)
	}
	return table, nil
}
