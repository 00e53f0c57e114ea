// Package sqlutil provides SQL identifier and placeholder helpers shared by
// the database source and table statistics queries.
package sqlutil

import (
	"fmt"
	"regexp"
	"strings"
)

// QuoteIdentifier quotes a single identifier (table name, column name) for
// the given driver: backticks for MySQL, double quotes otherwise. Existing
// quote characters are escaped by doubling.
// Example: QuoteIdentifier("postgres", "songs") -> `"songs"`
// Example: QuoteIdentifier("mysql", "songs") -> "`songs`"
func QuoteIdentifier(driver, name string) string {
	if driver == "mysql" {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteQualified quotes an optionally schema-qualified name part by part.
// Example: QuoteQualified("postgres", "deftunes.songs") -> `"deftunes"."songs"`
func QuoteQualified(driver, name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = QuoteIdentifier(driver, p)
	}
	return strings.Join(parts, ".")
}

// validIdentifierRegex matches valid identifier characters. Both MySQL and
// PostgreSQL allow more, but restricting to alphanumeric and underscore is a
// defense-in-depth measure against SQL injection.
var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier checks if a name is a valid unqualified identifier.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// IsValidQualifiedIdentifier checks a name of the form "ident" or
// "schema.ident". Use this for table names that might come from
// configuration.
func IsValidQualifiedIdentifier(name string) bool {
	parts := strings.Split(name, ".")
	if len(parts) == 0 || len(parts) > 2 {
		return false
	}
	for _, p := range parts {
		if !IsValidIdentifier(p) {
			return false
		}
	}
	return true
}

// QuoteQualifiedSafe quotes an optionally schema-qualified name after
// validating it. Returns an error if any part contains invalid characters.
// Use this when identifiers might come from untrusted sources.
func QuoteQualifiedSafe(driver, name string) (string, error) {
	if !IsValidQualifiedIdentifier(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return QuoteQualified(driver, name), nil
}

// Placeholder returns the bind-parameter marker for the given driver and
// 1-based position: $1, $2, ... for PostgreSQL, ? for MySQL.
func Placeholder(driver string, position int) string {
	if driver == "mysql" {
		return "?"
	}
	return fmt.Sprintf("$%d", position)
}

// SplitQualified splits an optionally schema-qualified name into schema and
// table. The schema is empty when the name is unqualified.
func SplitQualified(name string) (schema, table string) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", parts[0]
}

// InvalidIdentifierError is returned when an identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}
