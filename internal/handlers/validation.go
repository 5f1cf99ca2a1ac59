package handlers

import (
	"strconv"
	"strings"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	maxPage          = 1_000_000
)

// parsePaging reads page/limit query values. Out of range values fall back
// to the defaults; limit and page are capped so the offset cannot overflow.
func parsePaging(pageRaw, limitRaw string) (limit, offset int) {
	page := parseInt(pageRaw, 1)
	if page > maxPage {
		page = maxPage
	}
	limit = parseInt(limitRaw, defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return limit, (page - 1) * limit
}

// normalizeCurrency upper-cases a currency code so "usd" and "USD" are the
// same on every route.
func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
