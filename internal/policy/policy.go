// Package policy screens inbound text and scrubs PII before anything is
// logged or stored.
package policy

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrSuspiciousMessage = errors.New("message contains suspicious content")
	ErrSuspiciousQuery   = errors.New("query contains suspicious patterns")
)

// Patterns that have no business in a chat message.
var messageBlocklist = []string{"<script", "<?php"}

// SQL-shaped fragments that have no business in an outlet query.
var queryBlocklist = []string{"drop", "delete", "insert", "update", "'", "--", ";"}

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	cardPattern  = regexp.MustCompile(`\b(?:\d[ \-]?){13,16}\b`)
	phonePattern = regexp.MustCompile(`\+?\d[\d \-]{7,14}\d`)
)

// ScreenMessage rejects chat messages carrying markup injection attempts.
func ScreenMessage(message string) error {
	lower := strings.ToLower(message)
	for _, bad := range messageBlocklist {
		if strings.Contains(lower, bad) {
			return ErrSuspiciousMessage
		}
	}
	return nil
}

// ScreenQuery rejects outlet queries carrying SQL-shaped fragments. Queries
// never reach a database as text, this is defense in depth at the edge.
func ScreenQuery(query string) error {
	lower := strings.ToLower(query)
	for _, bad := range queryBlocklist {
		if strings.Contains(lower, bad) {
			return ErrSuspiciousQuery
		}
	}
	return nil
}

// RedactPII masks emails, card-like digit runs and phone numbers. Cards are
// matched before phones so a 16-digit run is not mislabeled.
func RedactPII(s string) string {
	s = emailPattern.ReplaceAllString(s, "[email]")
	s = cardPattern.ReplaceAllString(s, "[card]")
	s = phonePattern.ReplaceAllString(s, "[phone]")
	return s
}
