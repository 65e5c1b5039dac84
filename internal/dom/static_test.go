package dom

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/kapu/aion2-character-go/pkg/errors"
)

const fixture = `<html><body>
<div class="stat__base-item"><span class="name">위력</span><br><span class="value">1,204</span></div>
<div class="stat__base-item"><div>민첩</div><div>88</div></div>
<ul class="tabs">
  <li class="tab">장비</li>
  <li class="tab">펫</li>
  <li class="tab">날개 외형</li>
</ul>
<a class="link" href="/ko-kr/characters/2002/abc">Able</a>
<script>var ignored = "x";</script>
</body></html>`

func TestInnerTextBreaksBlocks(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<div>  Lv.45
	<span>Templar</span><p>second   line</p>tail<br>after</div>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got := InnerText(doc)
	want := "Lv.45 Templar\n\nsecond line\n\ntail\nafter"
	if got != want {
		t.Fatalf("InnerText = %q, want %q", got, want)
	}
}

func TestInnerTextParagraphSpacing(t *testing.T) {
	tests := []struct {
		markup string
		want   []string
	}{
		{`<li><p>위력</p><p>1,204</p></li>`, []string{"위력", "", "1,204"}},
		{`<li><div>위력</div><div>1,204</div></li>`, []string{"위력", "1,204"}},
		{`<div><div><p>a</p></div>
			<div>b</div></div>`, []string{"a", "", "b"}},
		{`<p>a<br><br>b</p>`, []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		doc, err := html.Parse(strings.NewReader(tt.markup))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if diff := cmp.Diff(tt.want, Lines(InnerText(doc))); diff != "" {
			t.Errorf("%s: lines mismatch (-want +got):\n%s", tt.markup, diff)
		}
	}
}

func TestStaticPageQueries(t *testing.T) {
	ctx := context.Background()
	page, err := NewStaticPage("https://example.test/", fixture)
	if err != nil {
		t.Fatalf("NewStaticPage: %v", err)
	}

	items, err := page.Find(ctx, ".stat__base-item")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if items.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", items.Len())
	}

	text, err := items.At(0).Text(ctx)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if lines := Lines(text); len(lines) != 2 || lines[0] != "위력" || lines[1] != "1,204" {
		t.Fatalf("unexpected lines %q", lines)
	}

	href, ok, err := FirstAttr(ctx, page, "a.link", "href")
	if err != nil || !ok || href != "/ko-kr/characters/2002/abc" {
		t.Fatalf("FirstAttr = %q %v %v", href, ok, err)
	}

	missing, err := page.Find(ctx, ".does-not-exist")
	if err != nil {
		t.Fatalf("Find missing: %v", err)
	}
	if missing.Len() != 0 {
		t.Fatalf("expected empty selection")
	}
	if _, err := missing.Text(ctx); !stderrors.Is(err, ErrNoElement) {
		t.Fatalf("expected ErrNoElement, got %v", err)
	}
	if missing.At(3).Len() != 0 {
		t.Fatalf("out of range At should be empty")
	}
}

func TestStaticHasTextAndClick(t *testing.T) {
	ctx := context.Background()
	page, err := NewStaticPage("https://example.test/", fixture)
	if err != nil {
		t.Fatalf("NewStaticPage: %v", err)
	}

	tabs, _ := page.Find(ctx, ".tab")
	matched, err := tabs.HasText(ctx, "펫", "날개")
	if err != nil {
		t.Fatalf("HasText: %v", err)
	}
	if matched.Len() != 2 {
		t.Fatalf("expected 2 matching tabs, got %d", matched.Len())
	}
	if err := matched.At(0).Click(ctx); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if clicks := page.Clicks(); len(clicks) != 1 || clicks[0] != "펫" {
		t.Fatalf("unexpected clicks %q", clicks)
	}
}

func TestStaticLauncherSessions(t *testing.T) {
	ctx := context.Background()
	launcher := NewStaticLauncher(map[string]string{
		"https://example.test/a": `<p class="x">A</p>`,
	})

	session, err := launcher.Launch(ctx)
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if err := session.Navigate(ctx, "https://example.test/a"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if text, ok, _ := FirstText(ctx, session, ".x"); !ok || text != "A" {
		t.Fatalf("FirstText = %q %v", text, ok)
	}

	err = session.Navigate(ctx, "https://example.test/missing")
	var navErr *errors.NavigationError
	if !stderrors.As(err, &navErr) {
		t.Fatalf("expected NavigationError, got %v", err)
	}
	if err := session.WaitFor(ctx, ".nothing", 0); err == nil {
		t.Fatalf("expected WaitFor to fail")
	}

	_ = session.Close()
	_ = session.Close()
	if launched, closed := launcher.Counts(); launched != 1 || closed != 1 {
		t.Fatalf("launched=%d closed=%d", launched, closed)
	}
}
