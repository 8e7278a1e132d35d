package validate_test

import (
	"strings"
	"testing"

	"weddingsite/internal/validate"
)

func TestName(t *testing.T) {
	if _, ok := validate.Name("   "); ok {
		t.Fatal("blank name accepted")
	}
	if n, ok := validate.Name("  Ana Souza "); !ok || n != "Ana Souza" {
		t.Fatalf("want trimmed name, got %q %v", n, ok)
	}
	if _, ok := validate.Name(strings.Repeat("a", validate.MaxNameLen+1)); ok {
		t.Fatal("overlong name accepted")
	}
}

func TestOptionalEmail(t *testing.T) {
	cases := map[string]bool{
		"":                true,
		"ana@example.com": true,
		"not-an-email":    false,
		"a@b":             false,
	}
	for in, want := range cases {
		if _, ok := validate.OptionalEmail(in); ok != want {
			t.Errorf("OptionalEmail(%q) = %v, want %v", in, ok, want)
		}
	}
}

func TestPhoneAndGallery(t *testing.T) {
	if _, ok := validate.Phone("+55 (11) 99999-0000"); !ok {
		t.Fatal("phone rejected")
	}
	if _, ok := validate.Phone("call me"); ok {
		t.Fatal("bad phone accepted")
	}
	if g, ok := validate.Gallery(" Ceremony "); !ok || g != "ceremony" {
		t.Fatalf("gallery normalise: %q %v", g, ok)
	}
	if _, ok := validate.Gallery("../etc"); ok {
		t.Fatal("traversal gallery accepted")
	}
}

func TestCompanionsAndPassword(t *testing.T) {
	if !validate.Companions(0) || validate.Companions(-1) || validate.Companions(validate.MaxCompanions+1) {
		t.Fatal("companions bounds")
	}
	if validate.Password("short1A") || !validate.Password("LongEnough1") {
		t.Fatal("password policy")
	}
}
