package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// decimals are checked by value
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		d, ok := f.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		x, _ := d.Float64()
		return x
	}, decimal.Decimal{})
	return v
}

func fieldMessage(fe validator.FieldError, prefix string) string {
	// drop the struct name from the namespace
	field := fe.Namespace()
	if _, rest, found := strings.Cut(field, "."); found {
		field = rest
	}
	field = prefix + field
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

func check(v any, prefix string) []string {
	err := validate.Struct(v)
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return nil
	}
	out := make([]string, 0, len(ves))
	for _, fe := range ves {
		out = append(out, fieldMessage(fe, prefix))
	}
	return out
}

// decode reads a JSON body into dst and validates it.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid json", err.Error())
	}
	if fields := check(dst, ""); len(fields) > 0 {
		return apperr.Validation("invalid request", fields...)
	}
	return nil
}

// decodeList reads a non-empty JSON array and validates every element.
func decodeList[T any](r *http.Request) ([]T, error) {
	var list []T
	if err := json.NewDecoder(r.Body).Decode(&list); err != nil {
		return nil, apperr.Validation("invalid json", err.Error())
	}
	if len(list) == 0 {
		return nil, apperr.Validation("invalid request", "at least one entry is required")
	}
	var fields []string
	for i := range list {
		fields = append(fields, check(&list[i], fmt.Sprintf("[%d].", i))...)
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("invalid request", fields...)
	}
	return list, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid request", name+" must be a positive integer")
	}
	return id, nil
}

// query reads optional query parameters, collecting every parse failure.
type query struct {
	r      *http.Request
	errors []string
}

func (q *query) str(name string) string { return strings.TrimSpace(q.r.URL.Query().Get(name)) }

func (q *query) num(name string) int {
	s := q.str(name)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		q.errors = append(q.errors, name+" must be an integer")
	}
	return n
}

func (q *query) optID(name string) *int64 {
	s := q.str(name)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		q.errors = append(q.errors, name+" must be an integer")
		return nil
	}
	return &n
}

func (q *query) dec(name string) *decimal.Decimal {
	s := q.str(name)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		q.errors = append(q.errors, name+" must be a number")
		return nil
	}
	return &d
}

// date accepts RFC 3339 timestamps or plain dates (UTC midnight).
func (q *query) date(name string) *time.Time {
	s := q.str(name)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	q.errors = append(q.errors, name+" must be a date (2006-01-02) or an RFC 3339 timestamp")
	return nil
}

func (q *query) err() error {
	if len(q.errors) == 0 {
		return nil
	}
	return apperr.Validation("invalid query", q.errors...)
}
