package scopes

import "testing"

func TestParseCratePinnedVersion(t *testing.T) {
	t.Parallel()
	s, err := Parse("crate:serde:1.0.210")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Kind != CrateScope || s.Crate.Name != "serde" || s.Crate.Version != "1.0.210" {
		t.Fatalf("unexpected scope: %#v", s)
	}
}

func TestParseCrateDefaultsToAnyVersion(t *testing.T) {
	t.Parallel()
	s, err := Parse("crate:serde")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Kind != CrateScope || s.Crate.Version != "*" || !s.Crate.IsAnyVersion() {
		t.Fatalf("expected any-version crate scope, got %#v", s)
	}
}

func TestParseSet(t *testing.T) {
	t.Parallel()
	s, err := Parse("set:web-stack")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Kind != SetScope || s.Set != "web-stack" {
		t.Fatalf("unexpected scope: %#v", s)
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"serde", "crate:", "set:", "foo:bar"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("expected parse error for %q", in)
		}
	}
}
