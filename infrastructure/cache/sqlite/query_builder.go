// ABOUTME: Parameterized SQL builder for the SQLite-backed stores
// ABOUTME: Table and column names are validated, values always travel as bind parameters

package sqlite

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Logger is the subset of interfaces.Logger the key validator needs
type Logger interface {
	Warn(msg string, fields map[string]interface{})
}

var (
	safeNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	maxNameLength   = 64
	maxKeyLength    = 512
)

// QueryBuilder assembles a single statement. The first invalid identifier
// is kept in Err and makes Build fail.
type QueryBuilder struct {
	query  strings.Builder
	params []interface{}
	where  bool
	err    error
}

// NewQueryBuilder creates a new query builder instance
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// ValidateName checks a table or column identifier
func ValidateName(name string) error {
	if name == "" {
		return errors.New("name cannot be empty")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("name too long: %s (max %d characters)", name, maxNameLength)
	}
	if !safeNamePattern.MatchString(name) {
		return fmt.Errorf("invalid name: %s (only alphanumeric and underscore allowed)", name)
	}
	return nil
}

func (qb *QueryBuilder) names(names ...string) bool {
	if qb.err != nil {
		return false
	}
	for _, n := range names {
		if err := ValidateName(n); err != nil {
			qb.err = err
			return false
		}
	}
	return true
}

// Select starts a SELECT of the given columns, or * when none are given
func (qb *QueryBuilder) Select(columns ...string) *QueryBuilder {
	if !qb.names(columns...) {
		return qb
	}
	if len(columns) == 0 {
		qb.query.WriteString("SELECT * ")
	} else {
		qb.query.WriteString("SELECT " + strings.Join(columns, ", ") + " ")
	}
	return qb
}

// SelectExpr starts a SELECT of a fixed expression. Only use with literals.
func (qb *QueryBuilder) SelectExpr(expr string) *QueryBuilder {
	qb.query.WriteString("SELECT " + expr + " ")
	return qb
}

// From adds FROM clause
func (qb *QueryBuilder) From(table string) *QueryBuilder {
	if qb.names(table) {
		qb.query.WriteString("FROM " + table + " ")
	}
	return qb
}

// Where adds a parameterized condition, joined with AND
func (qb *QueryBuilder) Where(column, operator string, value interface{}) *QueryBuilder {
	if !qb.names(column) {
		return qb
	}
	switch operator {
	case "=", "!=", ">", "<", ">=", "<=", "LIKE":
	default:
		qb.err = fmt.Errorf("invalid operator: %s", operator)
		return qb
	}

	if qb.where {
		qb.query.WriteString("AND ")
	} else {
		qb.query.WriteString("WHERE ")
		qb.where = true
	}
	qb.query.WriteString(column + " " + operator + " ? ")
	qb.params = append(qb.params, value)
	return qb
}

// Upsert builds an INSERT that replaces the row with the same primary key
func (qb *QueryBuilder) Upsert(table string, columns []string, values []interface{}) *QueryBuilder {
	if len(columns) != len(values) {
		qb.err = errors.New("column and value counts differ")
		return qb
	}
	if !qb.names(table) || !qb.names(columns...) {
		return qb
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	qb.query.WriteString("INSERT OR REPLACE INTO " + table +
		" (" + strings.Join(columns, ", ") + ") VALUES (" + placeholders + ")")
	qb.params = append(qb.params, values...)
	return qb
}

// Delete starts a DELETE
func (qb *QueryBuilder) Delete(table string) *QueryBuilder {
	if qb.names(table) {
		qb.query.WriteString("DELETE FROM " + table + " ")
	}
	return qb
}

// Build returns the statement and its parameters
func (qb *QueryBuilder) Build() (string, []interface{}, error) {
	if qb.err != nil {
		return "", nil, qb.err
	}
	return strings.TrimSpace(qb.query.String()), qb.params, nil
}

// ValidateKey rejects keys SQLite cannot store sensibly and warns about
// keys that look like injection attempts. Parameterization keeps those safe.
func ValidateKey(key string, logger Logger) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if len(key) > maxKeyLength {
		return fmt.Errorf("key too long: max %d characters", maxKeyLength)
	}
	if strings.Contains(key, "\x00") {
		return errors.New("key cannot contain null bytes")
	}

	if logger == nil {
		return nil
	}
	for _, pattern := range []string{"--", "/*", "*/", ";", "'", "\""} {
		if strings.Contains(key, pattern) {
			logger.Warn("Suspicious pattern detected in storage key", map[string]interface{}{
				"pattern":     pattern,
				"key_length":  len(key),
				"key_preview": truncateKey(key),
			})
		}
	}
	return nil
}

func truncateKey(key string) string {
	const maxPreview = 50
	if len(key) <= maxPreview {
		return key
	}
	return key[:maxPreview] + "..."
}
