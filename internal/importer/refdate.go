package importer

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// refDateLayout is the "10OCT" day+month token card networks append to ref1,
// with the bank year appended before parsing.
const refDateLayout = "02Jan2006"

// ResolveCardDate recovers the purchase date embedded at the end of a card
// transaction's first reference field. It returns bankDate when the field has
// no usable date token.
func ResolveCardDate(bankDate time.Time, reference1 string, logger *log.Logger) time.Time {
	if strings.TrimSpace(reference1) == "" {
		return bankDate
	}

	resolved, err := parseRefDate(bankDate, lastWord(reference1))
	if err != nil {
		logger.Warn("cannot resolve card date, using bank date", "ref1", reference1, "bank_date", bankDate.Format(dateFormat), "err", err)
		return bankDate
	}
	return resolved
}

// lastWord returns the text after the final whitespace rune, or "" if there is none.
func lastWord(s string) string {
	i := strings.LastIndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return s[i+size:]
}

func parseRefDate(bankDate time.Time, token string) (time.Time, error) {
	if len(token) != 5 {
		return time.Time{}, fmt.Errorf("date token %q is not 5 characters", token)
	}
	day, month := token[:2], token[2:]
	for _, r := range day {
		if r < '0' || r > '9' {
			return time.Time{}, fmt.Errorf("date token %q has a non-numeric day", token)
		}
	}
	for _, r := range month {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			return time.Time{}, fmt.Errorf("date token %q has a non-alphabetic month", token)
		}
	}
	month = strings.ToUpper(month[:1]) + strings.ToLower(month[1:])

	parsed, err := time.Parse(refDateLayout, fmt.Sprintf("%s%s%04d", day, month, bankDate.Year()))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date token %q: %w", token, err)
	}

	// Purchased in December, posted in January of the following year.
	if parsed.Month() == time.December && bankDate.Month() == time.January {
		parsed = parsed.AddDate(-1, 0, 0)
	}
	return parsed, nil
}
