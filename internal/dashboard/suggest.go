package dashboard

import (
	"strings"

	"github.com/smartb3/smartb3/pkg/models"
)

// Suggest returns the companies whose ticker or name contains text,
// ignoring case, in catalog order. Empty text yields no suggestions.
// A positive limit bounds the result.
func Suggest(text string, catalog []models.Company, limit int) []models.Company {
	needle := strings.ToLower(text)
	if needle == "" {
		return nil
	}

	var out []models.Company
	for _, c := range catalog {
		if strings.Contains(strings.ToLower(c.Ticker), needle) ||
			strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}
