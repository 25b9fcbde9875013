package services

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

// Column layout of a ManaBox collection export.
const (
	collectionColumns  = 17
	binderColumns      = 15
	colName            = 2
	colSetCode         = 3
	colSetName         = 4
	colCollectorNumber = 5
	colFoil            = 6
	colQuantity        = 8
	colScryfallID      = 10
	colPurchasePrice   = 11
	colLanguage        = 15
)

// ParseCollection turns a collection export (header line plus data lines)
// into cards, in input order. It stops at the first bad line.
func ParseCollection(text string) ([]models.Card, error) {
	if !utf8.ValidString(text) {
		return nil, models.ErrInvalidEncoding
	}

	lines := splitLines(text)
	if len(lines) <= 1 {
		return nil, models.ErrEmptyImport
	}

	cards := make([]models.Card, 0, len(lines)-1)
	for i, line := range lines[1:] {
		card, err := parseCollectionLine(i+1, line)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// splitLines splits on "\n", strips a trailing "\r" and drops the empty
// line produced by a final line break.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// splitFields splits on commas outside double quotes. Quotes are dropped and
// every field is trimmed.
func splitFields(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}

func parseCollectionLine(lineNumber int, line string) (models.Card, error) {
	fields := splitFields(line)

	switch len(fields) {
	case collectionColumns:
	case binderColumns:
		return models.Card{}, models.ErrBinderExport
	default:
		return models.Card{}, models.NewColumnCountError(len(fields))
	}

	valueErr := func(field, value string, err error) error {
		return &models.ValueError{Line: lineNumber, Field: field, Value: value, Err: err}
	}

	setCode, err := models.ParseSetCode(fields[colSetCode])
	if err != nil {
		return models.Card{}, valueErr("set_code", fields[colSetCode], err)
	}

	language, err := models.ParseLanguageCode(fields[colLanguage])
	if err != nil {
		return models.Card{}, valueErr("language", fields[colLanguage], err)
	}

	quantity, err := strconv.ParseUint(fields[colQuantity], 10, 8)
	if err != nil {
		return models.Card{}, valueErr("quantity", fields[colQuantity], err)
	}

	price, err := decimal.NewFromString(fields[colPurchasePrice])
	if err != nil {
		return models.Card{}, valueErr("purchase_price", fields[colPurchasePrice], err)
	}
	if price.IsNegative() {
		return models.Card{}, valueErr("purchase_price", fields[colPurchasePrice], nil)
	}
	cents, ok := models.MoneyFromDecimal(price).Amount()
	if !ok {
		return models.Card{}, valueErr("purchase_price", fields[colPurchasePrice], nil)
	}

	// The Scryfall id only feeds product id resolution, so a bad one is not fatal.
	scryfallID, err := uuid.Parse(fields[colScryfallID])
	if err != nil {
		scryfallID = uuid.Nil
	}

	return models.Card{
		ID: models.CardID{
			SetCode:         setCode,
			CollectorNumber: fields[colCollectorNumber],
			Language:        language,
			Foil:            fields[colFoil] != "normal",
		},
		Name:          fields[colName],
		SetName:       fields[colSetName],
		Quantity:      uint8(quantity),
		PurchasePrice: cents,
		ScryfallID:    scryfallID,
	}, nil
}
