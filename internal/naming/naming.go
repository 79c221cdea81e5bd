// Package naming holds the identifier transforms shared by the analyzer and
// the entity builder. Every generated class, field and collection name goes
// through these functions so the two never disagree.
package naming

import (
	"strings"
	"unicode"
)

// SnakeToCamel converts an identifier such as "categoria_id" to lower camel
// case ("categoriaId"). Identifiers that are already camel case keep their
// word boundaries.
func SnakeToCamel(s string) string {
	words := splitWords(s)
	var b strings.Builder
	for i, w := range words {
		w = strings.ToLower(w)
		if i == 0 {
			b.WriteString(w)
			continue
		}
		b.WriteString(upperFirst(w))
	}
	return b.String()
}

// CamelToPascal upper-cases the first rune.
func CamelToPascal(s string) string {
	return upperFirst(s)
}

// CamelToSnake converts "fechaCreacion" to "fecha_creacion".
func CamelToSnake(s string) string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// Pluralize applies naive English pluralization: y -> ies, s -> ses, else +s.
func Pluralize(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, "y"):
		return s[:len(s)-1] + "ies"
	case strings.HasSuffix(lower, "s"):
		return s + "es"
	default:
		return s + "s"
	}
}

// Singularize strips a trailing plural marker. "ies" becomes "y" so that
// Pluralize and Singularize round-trip; any other single trailing "s" is removed.
func Singularize(s string) string {
	lower := strings.ToLower(s)
	switch {
	case len(s) > 3 && strings.HasSuffix(lower, "ies"):
		return s[:len(s)-3] + "y"
	case len(s) > 1 && strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss"):
		return s[:len(s)-1]
	default:
		return s
	}
}

// StripIDSuffix removes a trailing "_id" (any case). The identifier is
// returned unchanged when nothing would be left.
func StripIDSuffix(s string) string {
	lower := strings.ToLower(s)
	if strings.HasSuffix(lower, "_id") && len(s) > 3 {
		return s[:len(s)-3]
	}
	if len(s) > 2 && strings.HasSuffix(s, "Id") && unicode.IsLower(rune(s[len(s)-3])) {
		return s[:len(s)-2]
	}
	return s
}

// EntityName derives the class name of a table: "detalle_compras" -> "DetalleCompra".
func EntityName(table string) string {
	return CamelToPascal(SnakeToCamel(Singularize(table)))
}

// FieldName derives the lower camel field name of a column.
func FieldName(column string) string {
	return SnakeToCamel(column)
}

// AssociationName derives the singular field name of an association to table.
func AssociationName(table string) string {
	return lowerFirst(EntityName(table))
}

// CollectionName derives the plural field name used for inverse associations.
func CollectionName(table string) string {
	return Pluralize(AssociationName(table))
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// splitWords breaks an identifier into words on underscores, dashes, dots
// and camelCase boundaries.
func splitWords(s string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r):
			if current.Len() > 0 && i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				flush()
			} else if current.Len() > 1 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				flush()
			}
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return words
}
