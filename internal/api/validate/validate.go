// Package validate decodes request bodies and checks them against their
// `validate` struct tags.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/baharkarakas/rewear-backend/internal/apperr"
)

// maxBodyBytes caps a JSON request body.
const maxBodyBytes = 1 << 20

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string {
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return val
}

// DecodeJSON reads r's body into dst, rejecting unknown fields and trailing
// data, then validates dst. Every failure is a VALIDATION_ERROR.
func DecodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer func() { _, _ = io.Copy(io.Discard, body) }()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.CodeValidation, "request body is empty")
		}
		return apperr.Wrap(apperr.CodeValidation, err, "invalid request body").
			WithDetails(map[string]any{"error": err.Error()})
	}
	if dec.More() {
		return apperr.New(apperr.CodeValidation, "request body must hold a single JSON object")
	}
	return Struct(dst)
}

// Struct runs the tag validation on s.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.CodeValidation, err, "validation failed")
	}
	fields := make(Errs, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, ErrField{Field: fe.Field(), Msg: message(fe)})
	}
	return apperr.Wrap(apperr.CodeValidation, fields, "validation failed").WithDetails(fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}

// QueryInt reads an optional integer query parameter within [min, max].
func QueryInt(r *http.Request, key string, def, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Newf(apperr.CodeValidation, "%s must be numeric", key).
			WithDetails(Errs{{Field: key, Msg: "must be numeric"}})
	}
	if n < min || n > max {
		return 0, apperr.Newf(apperr.CodeValidation, "%s out of range", key).
			WithDetails(Errs{{Field: key, Msg: fmt.Sprintf("must be between %d and %d", min, max)}})
	}
	return n, nil
}
