package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

type ItemStatus string

const (
	StatusActive  ItemStatus = "active"
	StatusSold    ItemStatus = "sold"
	StatusRemoved ItemStatus = "removed"
)

// SummaryMaxLen is the rune limit for Item.Summary and User.Preferences.
const SummaryMaxLen = 64

type Item struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Categories []string   `json:"categories"`
	Details    string     `json:"details"`
	Summary    string     `json:"summary"`
	Price      int        `json:"price"`
	Status     ItemStatus `json:"status"`
	OwnerID    string     `json:"owner_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Summarize derives the short text the ranking oracle sees for an item.
func Summarize(name string, categories []string, details string) string {
	parts := []string{collapse(name)}
	if len(categories) > 0 {
		cats := make([]string, 0, len(categories))
		for _, c := range categories {
			if c = collapse(c); c != "" {
				cats = append(cats, c)
			}
		}
		if len(cats) > 0 {
			parts = append(parts, strings.Join(cats, ", "))
		}
	}
	if d := collapse(details); d != "" {
		parts = append(parts, d)
	}
	return Truncate(strings.Join(parts, " | "), SummaryMaxLen)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
