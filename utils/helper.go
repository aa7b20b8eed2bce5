package utils

import (
	"bytes"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs validator tags on any struct. Handlers use gin's
// binding for request bodies; this is for values assembled in code
// (e.g. parsed upload rows).
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// ExecTemplate renders a SQL template with conditional filter blocks.
// Values are never interpolated into the SQL text, only the presence of
// bound-parameter clauses is toggled.
func ExecTemplate(tString string, data map[string]interface{}) (string, error) {
	t, err := template.New("sql").Parse(tString)
	if err != nil {
		return "", errors.New("error parsing sql template: " + err.Error())
	}
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", errors.New("failed to execute sql template: " + err.Error())
	}
	return b.String(), nil
}

// NormalizeOrderNo canonicalizes an order identifier for cross-source
// comparison: trimmed, uppercased, internal whitespace removed.
func NormalizeOrderNo(orderNo string) string {
	return strings.ToUpper(strings.Join(strings.Fields(orderNo), ""))
}

var orderSequencePattern = regexp.MustCompile(`(\d+)\s*$`)

// ExtractOrderSequence pulls the trailing numeric portion of an order
// identifier ("X-25-150" -> 150), used as a recency proxy. ok is false
// when the identifier carries no trailing number.
func ExtractOrderSequence(orderNo string) (int, bool) {
	m := orderSequencePattern.FindStringSubmatch(strings.TrimSpace(orderNo))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
