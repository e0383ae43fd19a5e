package validate

import (
	"errors"
	"testing"
)

type sample struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,contact_email"`
	Capacity int    `json:"capacity" validate:"min=1"`
	Color    string `json:"color" validate:"omitempty,hexcolor_short"`
}

func TestEmail(t *testing.T) {
	valid := []string{"hq@x.com", "a.b@c.co.uk", "bob@x.io"}
	invalid := []string{"not-an-email", "a@b", "a b@c.com", "@x.com", ""}
	for _, v := range valid {
		if !Email(v) {
			t.Fatalf("expected %q to be valid", v)
		}
	}
	for _, v := range invalid {
		if Email(v) {
			t.Fatalf("expected %q to be invalid", v)
		}
	}
}

func TestStructReportsFieldsByJSONName(t *testing.T) {
	err := Struct(sample{Email: "not-an-email", Color: "blue"})
	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	for _, key := range []string{"name", "email", "capacity", "color"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("expected error for %s, got %v", key, fields)
		}
	}
	if fields["email"] != "Please enter a valid email address" {
		t.Fatalf("unexpected email message %q", fields["email"])
	}
}

func TestStructAcceptsValid(t *testing.T) {
	if err := Struct(sample{Name: "HQ", Email: "hq@x.com", Capacity: 10, Color: "#3B82F6"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
