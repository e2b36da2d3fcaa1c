package notifier

import (
	"fmt"
	"strings"
	"time"

	"PartWatch/internal/updater"
)

// ProductStatus is one product's line in a refresh report: the current
// lowest price across retailers plus the change since the prior refresh.
type ProductStatus struct {
	Name      string
	Price     float64
	Currency  string
	Retailer  string
	Change    float64
	HasChange bool
}

// FormatRunReport renders a refresh run and the resulting product
// statuses as a Telegram HTML message.
func FormatRunReport(result *updater.Result, statuses []ProductStatus) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🛒 <b>PartWatch refresh</b> | %s\n\n", result.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Sources fetched: %d | failed: %d (%.1fs)\n\n", result.Fetched, result.Failed, result.Duration.Seconds()))

	if len(statuses) > 0 {
		b.WriteString("💰 <b>Lowest prices:</b>\n")
		for _, st := range statuses {
			b.WriteString(fmt.Sprintf("  %s: %.2f %s (%s)", st.Name, st.Price, st.Currency, st.Retailer))
			if st.HasChange {
				b.WriteString(fmt.Sprintf(" %+.1f%%", st.Change))
			}
			b.WriteString("\n")
		}
	}

	if result.Failed > 0 {
		b.WriteString("\n⚠️ <b>Skipped sources:</b>\n")
		for _, src := range result.Sources {
			if src.Err != nil {
				b.WriteString(fmt.Sprintf("  %s/%s: %v\n", src.Product, src.Retailer, src.Err))
			}
		}
	}

	return b.String()
}

// FormatStatus renders the current lowest prices without run details,
// for the /status command.
func FormatStatus(statuses []ProductStatus) string {
	if len(statuses) == 0 {
		return "No tracked products with price history yet."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>Tracked parts</b> | %s\n\n", time.Now().Format("2006-01-02 15:04")))
	for _, st := range statuses {
		b.WriteString(fmt.Sprintf("%s: %.2f %s (%s)", st.Name, st.Price, st.Currency, st.Retailer))
		if st.HasChange {
			b.WriteString(fmt.Sprintf(" %+.1f%% since last refresh", st.Change))
		}
		b.WriteString("\n")
	}
	return b.String()
}
