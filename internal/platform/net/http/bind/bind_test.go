package bind

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"

	perr "caisse/internal/platform/errors"
	"caisse/internal/platform/testkit"
)

type addItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1,max=99"`
	Note      string `json:"-"`
}

func TestParseJSON(t *testing.T) {
	cases := []struct {
		name, method, body string
		opts               []Options
		code               perr.ErrorCode
		field              string
		want               addItem
	}{
		{name: "ok", method: "POST", body: `{"product_id":"p-1","quantity":2}`, want: addItem{ProductID: "p-1", Quantity: 2}},
		{name: "empty post", method: "POST", body: "", code: perr.ErrorCodeJSON},
		{name: "empty get", method: "GET", body: ""},
		{name: "empty delete", method: "DELETE", body: ""},
		{name: "empty allowed", method: "PUT", body: "", opts: []Options{{AllowEmpty: true}}},
		{name: "malformed", method: "POST", body: `{"product_id":`, code: perr.ErrorCodeJSON},
		{name: "unknown field", method: "POST", body: `{"product_id":"p-1","quantity":1,"x":1}`, code: perr.ErrorCodeJSON},
		{
			name: "unknown allowed", method: "POST", body: `{"product_id":"p-1","quantity":1,"x":1}`,
			opts: []Options{{AllowUnknown: true}}, want: addItem{ProductID: "p-1", Quantity: 1},
		},
		{name: "trailing value", method: "POST", body: `{"product_id":"p-1","quantity":1} {}`, code: perr.ErrorCodeJSON},
		{name: "over limit", method: "POST", body: `{"product_id":"p-1","quantity":1}`, opts: []Options{{MaxBytes: 10}}, code: perr.ErrorCodeJSON},
		{name: "missing id", method: "POST", body: `{"quantity":1}`, code: perr.ErrorCodeValidation, field: "product_id"},
		{name: "zero quantity", method: "POST", body: `{"product_id":"p-1","quantity":0}`, code: perr.ErrorCodeValidation, field: "quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/pos/cart/items", strings.NewReader(tc.body))
			got, err := ParseJSON[addItem](req, tc.opts...)
			if tc.code != perr.ErrorCodeUnknown {
				e, ok := perr.As(err)
				if !ok || e.Code() != tc.code || e.Field() != tc.field {
					t.Fatalf("err = %v, want code %s field %q", err, tc.code, tc.field)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("got %+v, %v", got, err)
			}
		})
	}
}

func TestParseJSONReadFailure(t *testing.T) {
	req := httptest.NewRequest("POST", "/pos/cart/items", iotest.ErrReader(errors.New("reset by peer")))
	_, err := ParseJSON[addItem](req)
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("err = %v", err)
	}
	testkit.MustContain(t, err.Error(), "reset by peer")
}

func TestParseJSONTrailingCheck(t *testing.T) {
	testkit.Swap(t, &more, func(*json.Decoder) bool { return true })
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"product_id":"p-1","quantity":1}`))
	if _, err := ParseJSON[addItem](req); err == nil || !strings.Contains(err.Error(), "trailing") {
		t.Fatalf("err = %v", err)
	}
}

func TestStructMessages(t *testing.T) {
	type label struct {
		Count   int    `json:"count" validate:"max=5"`
		Barcode string `json:"barcode,omitempty" validate:"barcode"`
		Plain   int    `validate:"min=1"`
	}
	cases := []struct {
		in           label
		field, error string
	}{
		{label{Count: 6, Barcode: "4006381333931", Plain: 1}, "count", "count must be at most 5"},
		{label{Count: 1, Barcode: "40063x81", Plain: 1}, "barcode", "barcode must be an 8 to 13 digit barcode"},
		{label{Count: 1, Barcode: "12345678"}, "Plain", "Plain must be at least 1"},
	}
	for _, tc := range cases {
		e, ok := perr.As(Struct(tc.in))
		if !ok || e.Field() != tc.field || e.Error() != tc.error || e.Code() != perr.ErrorCodeValidation {
			t.Fatalf("Struct(%+v) = %v", tc.in, e)
		}
	}
	if err := Struct(label{Count: 1, Barcode: "12345678", Plain: 1}); err != nil {
		t.Fatalf("valid label: %v", err)
	}
	if !perr.IsCode(Struct(42), perr.ErrorCodeJSON) {
		t.Fatalf("a non struct is an internal validator error")
	}
}

func TestIsBarcode(t *testing.T) {
	cases := map[string]bool{
		"12345678":       true,
		"4006381333931":  true,
		"1234567":        false,
		"12345678901234": false,
		"1234 678":       false,
		"":               false,
	}
	for in, want := range cases {
		if got := isBarcode(in); got != want {
			t.Fatalf("isBarcode(%q) = %v, want %v", in, got, want)
		}
	}
}
