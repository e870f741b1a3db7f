package domain

import "strings"

const (
	untitled      = "Reporte sin título"
	defaultTitle  = "Reporte de reunión"
	maxTitleRunes = 80
)

// DeriveTitle picks a human title for a report: the first sentence of the short summary,
// else the first key point, else the first decision. Results are cut to 80 characters.
func DeriveTitle(a *Analysis) string {
	if a == nil {
		return untitled
	}
	if a.ShortSummary != "" {
		first := a.ShortSummary
		if i := strings.IndexAny(first, ".!?"); i >= 0 {
			first = first[:i]
		}
		if first = strings.TrimSpace(first); first != "" {
			return truncate(first)
		}
	}
	if t := firstNonBlank(a.KeyPoints); t != "" {
		return truncate(t)
	}
	if t := firstNonBlank(a.Decisions); t != "" {
		return truncate(t)
	}
	return defaultTitle
}

func firstNonBlank(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return strings.TrimSpace(items[0])
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxTitleRunes {
		return s
	}
	return string(r[:maxTitleRunes])
}
