// Package cli is the interactive front end of the ledger: cobra commands,
// huh prompts and lipgloss rendering. It is the caller that enforces roles
// before invoking the Ledger.
package cli

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/warp/pettycash/generic"
)

// FormatAmount groups thousands and keeps two decimals.
// e.g., 1234.5 -> "1,234.50"
func FormatAmount(d decimal.Decimal) string {
	return humanize.FormatFloat("#,###.##", d.Round(generic.MoneyPlaces).InexactFloat64())
}

// FormatWhen renders an audit timestamp with its age relative to now.
// e.g., "2026-01-21 10:04 (3 hours ago)"
func FormatWhen(t, now time.Time) string {
	return t.Format("2006-01-02 15:04") + " (" + humanize.RelTime(t, now, "ago", "from now") + ")"
}

// FormatCount pluralizes a count of vouchers, transactions and so on.
// e.g., FormatCount(1, "voucher") -> "1 voucher"
func FormatCount(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}
