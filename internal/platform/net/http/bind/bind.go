// Package bind decodes JSON request bodies and validates them against their
// validate tags, answering with caisse errors the envelope understands
package bind

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "caisse/internal/platform/errors"
	"caisse/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const defaultMaxBytes = 1 << 20

// Options loosens ParseJSON; the zero value wants a body of at most 1MB with no unknown fields
type Options struct {
	MaxBytes     int64
	AllowUnknown bool
	// AllowEmpty lets any method send no body; GET, HEAD, DELETE and OPTIONS always may
	AllowEmpty bool
}

var (
	once  sync.Once
	valid *validator.Validate
	trans ut.Translator

	more = func(dec *json.Decoder) bool { return dec.More() }
)

func setup() {
	once.Do(func() {
		loc := en.New()
		trans, _ = ut.New(loc, loc).GetTranslator("en")

		valid = validator.New(validator.WithRequiredStructEnabled())
		valid.RegisterTagNameFunc(jsonName)
		_ = en_translations.RegisterDefaultTranslations(valid, trans)

		translate("min", "{0} must be at least {1}")
		translate("max", "{0} must be at most {1}")
		_ = valid.RegisterValidation("barcode", func(fl validator.FieldLevel) bool {
			return isBarcode(fl.Field().String())
		})
		translate("barcode", "{0} must be an 8 to 13 digit barcode")
	})
}

// jsonName reports fields by their wire name
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// translate overrides the message for tag; {0} is the field and {1} the tag param
func translate(tag, text string) {
	_ = valid.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

func bodiless(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

// ParseJSON decodes one JSON value into T and validates it
func ParseJSON[T any](r *http.Request, opts ...Options) (T, error) {
	var zero, dst T
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = defaultMaxBytes
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.C(r.Context()).Warn().Err(err).Msg("closing request body")
		}
	}()

	br := bufio.NewReader(io.LimitReader(r.Body, o.MaxBytes))
	if _, err := br.Peek(1); err != nil {
		if !errors.Is(err, io.EOF) {
			return zero, perr.JSONErrf("read body: %v", err)
		}
		if o.AllowEmpty || bodiless(r.Method) {
			return zero, nil
		}
		return zero, perr.JSONErrf("empty body")
	}

	dec := json.NewDecoder(br)
	if !o.AllowUnknown {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&dst); err != nil {
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if more(dec) {
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := Struct(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

// Struct validates v; the first failing field comes back as a Validation error naming it
func Struct(v any) error {
	setup()
	err := valid.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Get().Error().Err(inv).Msg("validator internal error")
		return perr.JSONErrf("validation error")
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return perr.WithField(perr.New(perr.ErrorCodeValidation, fe.Translate(trans)), fe.Field())
	}
	return perr.Wrap(err, perr.ErrorCodeValidation, "validation failed")
}

// barcodeMin and barcodeMax bound the retail symbologies accepted by the scanner
const (
	barcodeMin = 8
	barcodeMax = 13
)

// isBarcode reports whether s is an 8 to 13 digit retail barcode
func isBarcode(s string) bool {
	if len(s) < barcodeMin || len(s) > barcodeMax {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
