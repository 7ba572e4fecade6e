package validator

import (
	"reflect"
	"testing"

	"github.com/ayush/devconnector/internal/apperr"
)

func TestSplitList(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a, b ,c", []string{"a", "b", "c"}},
		{"Go", []string{"Go"}},
		{" , ,", []string{}},
		{"HTML,,CSS ", []string{"HTML", "CSS"}},
	}
	for _, c := range cases {
		if got := SplitList(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("SplitList(%q) = %#v, want %#v", c.in, got, c.want)
		}
	}
}

func TestCheckerCollectsInOrder(t *testing.T) {
	var c Checker
	c.Required("name", "", "Name is required")
	c.Email("email", "not-an-email", "Please include a valid email")
	c.MinLen("password", "abc", 6, "Please enter a password with 6 or more characters")

	err := c.Err()
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := err.(*apperr.Error).Fields
	if len(fields) != 3 || fields[0].Param != "name" || fields[2].Param != "password" {
		t.Fatalf("unexpected fields %+v", fields)
	}
}

func TestCheckerPasses(t *testing.T) {
	var c Checker
	c.Required("name", "Jane", "Name is required")
	c.Email("email", "jane@example.com", "Please include a valid email")
	c.MinLen("password", "secret1", 6, "too short")
	if err := c.Err(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestMaxBytesCountsBytes(t *testing.T) {
	var c Checker
	if !c.MaxBytes("password", "ééé", 6, "too long") {
		t.Fatal("six bytes should pass a six byte limit")
	}
	if c.MaxBytes("password", "éééé", 6, "too long") {
		t.Fatal("eight bytes should fail a six byte limit")
	}
	if len(c.fields) != 1 || c.fields[0].Param != "password" {
		t.Fatalf("unexpected fields %+v", c.fields)
	}
}

func TestEmailRejectsDisplayName(t *testing.T) {
	var c Checker
	if c.Email("email", "Jane <jane@example.com>", "bad") {
		t.Fatalf("display-name form should be rejected")
	}
}

func TestDate(t *testing.T) {
	var c Checker
	if d, ok := c.Date("from", "2020-03-01", "bad date"); !ok || d.Year() != 2020 || d.Month() != 3 {
		t.Fatalf("unexpected parse %v %v", d, ok)
	}
	if _, ok := c.Date("from", "2020-03-01T10:00:00Z", "bad date"); !ok {
		t.Fatalf("rfc3339 should parse")
	}
	if _, ok := c.Date("to", "yesterday", "bad date"); ok || !c.HasErrors() {
		t.Fatalf("garbage should fail")
	}
}
