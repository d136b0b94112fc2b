package generate

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// title upper-cases the first letter of word. A Caser keeps state, so one
// is created per call.
func title(word string) string {
	return cases.Title(language.Und, cases.NoLower).String(word)
}

var commonInitialisms = map[string]bool{
	"API":  true,
	"HTTP": true,
	"ID":   true,
	"IP":   true,
	"JSON": true,
	"URL":  true,
	"UTC":  true,
	"UUID": true,
}

// ExportedName converts a documented name such as "lastTransactionID",
// "order.id" or "trailing_stop" into an exported Go identifier.
func ExportedName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}

	var sb strings.Builder
	for _, part := range strings.FieldsFunc(name, isSeparator) {
		for _, word := range splitCamel(part) {
			if upper := strings.ToUpper(word); commonInitialisms[upper] {
				sb.WriteString(upper)
				continue
			}
			sb.WriteString(title(word))
		}
	}
	return sb.String()
}

// constName builds the constant name of an enum value, e.g.
// ("OrderState", "PENDING_CANCEL") -> OrderStatePendingCancel.
func constName(typeName, value string) string {
	var sb strings.Builder
	sb.WriteString(typeName)
	for _, word := range strings.FieldsFunc(value, isSeparator) {
		sb.WriteString(title(strings.ToLower(word)))
	}
	return sb.String()
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// splitCamel splits at lower-to-upper transitions: "accountID" -> [account ID].
func splitCamel(s string) []string {
	var (
		words []string
		start int
	)
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && unicode.IsLower(runes[i-1]) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	return append(words, string(runes[start:]))
}
