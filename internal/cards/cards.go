// Package cards is the payment-card vault: validated card references kept
// per customer for front-desk charging. The full card number is validated
// at intake and never persisted; records carry brand, last four digits
// and expiry only.
package cards

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card brands recognized at intake.
const (
	BrandVisa       = "Visa"
	BrandMastercard = "Mastercard"
	BrandAmex       = "American Express"
	BrandDiscover   = "Discover"
	BrandUnknown    = "Card"
)

// CardRecord is a stored card reference.
type CardRecord struct {
	ID             string    `json:"id"`
	CardholderName string    `json:"cardholder_name"`
	Brand          string    `json:"brand"`
	Last4          string    `json:"last4"`
	ExpMonth       int       `json:"exp_month"`
	ExpYear        int       `json:"exp_year"`
	CreatedAt      time.Time `json:"created_at"`
}

// DisplayName renders the record for lists, e.g. "Visa •••• 4242".
func (c CardRecord) DisplayName() string {
	return fmt.Sprintf("%s •••• %s", c.Brand, c.Last4)
}

// NewCardRecord validates the raw card details and builds a storable
// record. The number itself is discarded after validation.
func NewCardRecord(cardholderName, number string, expMonth, expYear int, now time.Time) (CardRecord, error) {
	digits := normalizeNumber(number)
	if !LuhnValid(digits) {
		return CardRecord{}, fmt.Errorf("cards: invalid card number")
	}
	if !ExpiryValid(expMonth, expYear, now) {
		return CardRecord{}, fmt.Errorf("cards: card is expired or expiry is invalid")
	}
	name := strings.TrimSpace(cardholderName)
	if name == "" {
		return CardRecord{}, fmt.Errorf("cards: cardholder name is required")
	}
	return CardRecord{
		ID:             uuid.New().String(),
		CardholderName: name,
		Brand:          BrandFromNumber(digits),
		Last4:          digits[len(digits)-4:],
		ExpMonth:       expMonth,
		ExpYear:        expYear,
		CreatedAt:      now.UTC(),
	}, nil
}

func normalizeNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LuhnValid reports whether the digit string passes the Luhn checksum.
// Card numbers are 12 to 19 digits.
func LuhnValid(digits string) bool {
	if len(digits) < 12 || len(digits) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ExpiryValid reports whether month/year denote a month that has not yet
// ended. Two-digit years are interpreted in the 2000s.
func ExpiryValid(month, year int, now time.Time) bool {
	if month < 1 || month > 12 {
		return false
	}
	if year < 100 {
		year += 2000
	}
	// The card works through the last day of its expiry month.
	endOfMonth := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	return now.Before(endOfMonth)
}

// BrandFromNumber infers the card brand from the leading digits.
func BrandFromNumber(digits string) string {
	switch {
	case strings.HasPrefix(digits, "4"):
		return BrandVisa
	case hasPrefixInRange(digits, 51, 55) || hasPrefixInRange(digits, 2221, 2720):
		return BrandMastercard
	case strings.HasPrefix(digits, "34") || strings.HasPrefix(digits, "37"):
		return BrandAmex
	case strings.HasPrefix(digits, "6011") || strings.HasPrefix(digits, "65"):
		return BrandDiscover
	default:
		return BrandUnknown
	}
}

func hasPrefixInRange(digits string, lo, hi int) bool {
	width := len(fmt.Sprint(lo))
	if len(digits) < width {
		return false
	}
	var prefix int
	if _, err := fmt.Sscanf(digits[:width], "%d", &prefix); err != nil {
		return false
	}
	return prefix >= lo && prefix <= hi
}
