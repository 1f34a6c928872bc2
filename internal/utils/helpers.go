package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)
	idSuffixPattern  = regexp.MustCompile(`(\d+)$`)
)

// FormatPrice formats an amount with a currency symbol and two decimals
func FormatPrice(amount decimal.Decimal, currencySymbol string) string {
	if currencySymbol == "" {
		currencySymbol = "$"
	}
	return currencySymbol + amount.StringFixed(2)
}

// DiscountPercentage returns how much cheaper the sale price is, rounded to
// a whole percent. A non-positive original price yields 0.
func DiscountPercentage(originalPrice, salePrice decimal.Decimal) int64 {
	if !originalPrice.IsPositive() {
		return 0
	}
	pct := originalPrice.Sub(salePrice).Div(originalPrice).Mul(decimal.NewFromInt(100))
	return pct.Round(0).IntPart()
}

// ShippingEstimate renders a delivery window: "1 day", "3 days" or "3-5 days"
func ShippingEstimate(minDays, maxDays int) string {
	if minDays == maxDays {
		if minDays == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", minDays)
	}
	return fmt.Sprintf("%d-%d days", minDays, maxDays)
}

// GenerateRandomString generates a random string of specified length
func GenerateRandomString(length int) string {
	bytes := make([]byte, (length+1)/2)
	if _, err := rand.Read(bytes); err != nil {
		return ""
	}
	return hex.EncodeToString(bytes)[:length]
}

// GenerateOrderID builds an order id of the form ORD-<unix ms>-<suffix>
func GenerateOrderID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}

// GenerateUserID builds a per-browser user id of the form user_<unix ms>_<random>
func GenerateUserID(now time.Time) string {
	return fmt.Sprintf("user_%d_%s", now.UnixMilli(), GenerateRandomString(9))
}

// NextSequentialID returns prefix followed by the zero-padded successor of
// the largest numeric suffix among existing ids with that prefix.
func NextSequentialID(prefix string, existing []string) string {
	highest := 0
	for _, id := range existing {
		if !strings.HasPrefix(strings.ToUpper(id), strings.ToUpper(prefix)) {
			continue
		}
		m := idSuffixPattern.FindStringSubmatch(id[len(prefix):])
		if m == nil {
			continue
		}
		var n int
		fmt.Sscanf(m[1], "%d", &n)
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, highest+1)
}

// Slugify converts a string to a URL-friendly slug
func Slugify(text string) string {
	slug := strings.ToLower(text)
	slug = slugInvalidChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// TruncateString cuts text to maxLength characters and appends an ellipsis
func TruncateString(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLength]) + "..."
}
