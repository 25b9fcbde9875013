package models

import (
	"strings"

	"github.com/google/uuid"
)

// SetCode identifies a card set, e.g. "FDN".
type SetCode string

// ParseSetCode validates a set code: exactly 3 ASCII letters or digits.
// Input is trimmed and upper-cased first.
func ParseSetCode(s string) (SetCode, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if len(code) != 3 {
		return "", &CodeError{Kind: CodeKindSet, Value: s}
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return "", &CodeError{Kind: CodeKindSet, Value: s}
		}
	}
	return SetCode(code), nil
}

func (s SetCode) String() string { return string(s) }

// LanguageCode is the printed language of a card.
type LanguageCode string

const (
	LanguageFR LanguageCode = "FR"
	LanguageEN LanguageCode = "EN"
)

// AllLanguageCodes returns every supported language.
func AllLanguageCodes() []LanguageCode {
	return []LanguageCode{LanguageFR, LanguageEN}
}

// ParseLanguageCode accepts "fr" or "en" in any case.
func ParseLanguageCode(s string) (LanguageCode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FR":
		return LanguageFR, nil
	case "EN":
		return LanguageEN, nil
	default:
		return "", &CodeError{Kind: CodeKindLanguage, Value: s}
	}
}

func (l LanguageCode) String() string { return string(l) }

// CardID identifies one printing a user can own. Two IDs are equal when all fields match.
type CardID struct {
	SetCode         SetCode      `json:"set_code"`
	CollectorNumber string       `json:"collector_number"`
	Language        LanguageCode `json:"language"`
	Foil            bool         `json:"foil"`
}

// Card is an owned printing with quantity and purchase price.
type Card struct {
	ID            CardID    `json:"id"`
	Name          string    `json:"name"`
	SetName       string    `json:"set_name"`
	Quantity      uint8     `json:"quantity"`
	PurchasePrice int64     `json:"purchase_price"` // cents
	ScryfallID    uuid.UUID `json:"scryfall_id"`
	CardmarketID  *uint32   `json:"cardmarket_id,omitempty"`
}

// HasScryfallID reports whether the import carried a usable Scryfall id.
func (c Card) HasScryfallID() bool { return c.ScryfallID != uuid.Nil }

// CardInfo is community usage data for a card name.
type CardInfo struct {
	Name       string `json:"name"`
	Inclusion  int    `json:"inclusion"`
	TotalDecks int    `json:"total_decks"`
}

// SetName maps a set code to its display name.
type SetName struct {
	Code SetCode `json:"code"`
	Name string  `json:"name"`
}
