package discovery

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/vendor-geo/internal/enrich"
)

// Filter returns the vendors matching every non-empty filter. Category and text
// matching use Unicode case folding.
func Filter(vendors []enrich.Vendor, f Filters) []enrich.Vendor {
	if f.MarketID == "" && f.Category == "" && f.Text == "" {
		return vendors
	}

	fold := cases.Fold()
	category := fold.String(strings.TrimSpace(f.Category))
	text := fold.String(strings.TrimSpace(f.Text))

	out := make([]enrich.Vendor, 0, len(vendors))
	for _, v := range vendors {
		if f.MarketID != "" && !attends(v, f.MarketID) {
			continue
		}
		if category != "" && !hasCategory(v, category, fold) {
			continue
		}
		if text != "" &&
			!strings.Contains(fold.String(v.Name), text) &&
			!strings.Contains(fold.String(v.Description), text) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func attends(v enrich.Vendor, marketID string) bool {
	for _, m := range v.Markets {
		if m.ID == marketID {
			return true
		}
	}
	return false
}

func hasCategory(v enrich.Vendor, folded string, fold cases.Caser) bool {
	for _, c := range v.Categories {
		if fold.String(c) == folded {
			return true
		}
	}
	return false
}
