package markdown

import (
	"strings"
	"testing"
)

func TestRewriteLinks_InlineLinks(t *testing.T) {
	t.Parallel()
	src := "See [Foo](old/path) for details."
	got := RewriteLinks(src, map[string]string{"old/path": "https://docs.rs/widgets/latest/widgets/struct.Foo.html"})
	want := "See [Foo](https://docs.rs/widgets/latest/widgets/struct.Foo.html) for details."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteLinks_ReferenceStyleLinks(t *testing.T) {
	t.Parallel()
	src := "See [Foo][ref] for details.\n\n[ref]: old/path"
	got := RewriteLinks(src, map[string]string{"old/path": "https://doc.rust-lang.org/std/vec/struct.Vec.html"})
	if !strings.Contains(got, "[ref]: https://doc.rust-lang.org/std/vec/struct.Vec.html") {
		t.Errorf("reference link not rewritten: %q", got)
	}
}

func TestRewriteLinks_EmptyMap(t *testing.T) {
	t.Parallel()
	src := "Hello [world](url)."
	got := RewriteLinks(src, nil)
	if got != src {
		t.Errorf("expected unchanged, got %q", got)
	}
	got = RewriteLinks(src, map[string]string{})
	if got != src {
		t.Errorf("expected unchanged for empty map, got %q", got)
	}
}

func TestRewriteLinks_NoMatchingLinks(t *testing.T) {
	t.Parallel()
	src := "Check [this](keep-me) out."
	got := RewriteLinks(src, map[string]string{"other": "https://docs.rs/other/latest/other/"})
	if got != src {
		t.Errorf("expected unchanged, got %q", got)
	}
}

func TestRewriteLinks_MultipleLinks(t *testing.T) {
	t.Parallel()
	src := "[A](a-dest) and [B](b-dest) together."
	got := RewriteLinks(src, map[string]string{
		"a-dest": "https://docs.rs/widgets/latest/widgets/fn.a.html",
		"b-dest": "https://docs.rs/widgets/latest/widgets/fn.b.html",
	})
	if !strings.Contains(got, "(https://docs.rs/widgets/latest/widgets/fn.a.html)") {
		t.Error("link A not rewritten")
	}
	if !strings.Contains(got, "(https://docs.rs/widgets/latest/widgets/fn.b.html)") {
		t.Error("link B not rewritten")
	}
}
