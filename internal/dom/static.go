package dom

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/kapu/aion2-character-go/pkg/errors"
)

const blankDocument = "<html><head></head><body></body></html>"

// StaticPage is a Page over an already-rendered HTML document. Navigation
// swaps in the document registered for the target URL. Waits return at once
// unless ctx is done. Clicks are recorded but change nothing.
type StaticPage struct {
	mu     sync.Mutex
	url    string
	doc    *goquery.Document
	routes map[string]string
	clicks []string
	waited time.Duration
}

// NewStaticPage parses html as the page currently loaded at url.
func NewStaticPage(url, html string) (*StaticPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &StaticPage{url: url, doc: doc, routes: map[string]string{}}, nil
}

// NewRoutedPage starts blank and serves routes on Navigate.
func NewRoutedPage(routes map[string]string) *StaticPage {
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(blankDocument))
	copied := make(map[string]string, len(routes))
	for url, html := range routes {
		copied[url] = html
	}
	return &StaticPage{url: "about:blank", doc: doc, routes: copied}
}

func (p *StaticPage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *StaticPage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewNavigationError("navigation aborted", url, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	html, ok := p.routes[url]
	if !ok {
		return errors.NewNavigationError("no document for url", url, nil)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return errors.NewNavigationError("document parse failed", url, err)
	}
	p.url = url
	p.doc = doc
	return nil
}

func (p *StaticPage) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.waited += d
	p.mu.Unlock()
	return nil
}

func (p *StaticPage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	found := p.doc.Find(selector).Length() > 0
	url := p.url
	p.mu.Unlock()

	if !found {
		return errors.NewNavigationError("timed out waiting for "+selector, url, context.DeadlineExceeded)
	}
	return nil
}

func (p *StaticPage) Find(ctx context.Context, selector string) (Selection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return &staticSelection{page: p, sel: p.doc.Find(selector)}, nil
}

// Clicks returns the text of every clicked element, in order.
func (p *StaticPage) Clicks() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.clicks...)
}

// Waited is the total fixed wait requested so far.
func (p *StaticPage) Waited() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waited
}

func (p *StaticPage) recordClick(text string) {
	p.mu.Lock()
	p.clicks = append(p.clicks, text)
	p.mu.Unlock()
}

type staticSelection struct {
	page *StaticPage
	sel  *goquery.Selection
}

func (s *staticSelection) Len() int {
	return s.sel.Length()
}

func (s *staticSelection) At(i int) Selection {
	return &staticSelection{page: s.page, sel: s.sel.Eq(i)}
}

func (s *staticSelection) Find(ctx context.Context, selector string) (Selection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &staticSelection{page: s.page, sel: s.sel.Find(selector)}, nil
}

func (s *staticSelection) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.sel.Length() == 0 {
		return "", ErrNoElement
	}
	return InnerText(s.sel.Nodes[0]), nil
}

func (s *staticSelection) Attr(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if s.sel.Length() == 0 {
		return "", false, ErrNoElement
	}
	value, ok := s.sel.First().Attr(name)
	return value, ok, nil
}

func (s *staticSelection) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.sel.Length() == 0 {
		return ErrNoElement
	}
	s.page.recordClick(InnerText(s.sel.Nodes[0]))
	return nil
}

func (s *staticSelection) HasText(ctx context.Context, substrs ...string) (Selection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filtered := s.sel.FilterFunction(func(_ int, el *goquery.Selection) bool {
		text := InnerText(el.Nodes[0])
		for _, substr := range substrs {
			if strings.Contains(text, substr) {
				return true
			}
		}
		return false
	})
	return &staticSelection{page: s.page, sel: filtered}, nil
}

// StaticSession wraps a routed page as a Session.
type StaticSession struct {
	*StaticPage
	closeOnce sync.Once
	onClose   func()
}

func (s *StaticSession) Close() error {
	s.closeOnce.Do(func() {
		if s.onClose != nil {
			s.onClose()
		}
	})
	return nil
}

// StaticLauncher hands out a fresh routed session per Launch, so state never
// leaks between calls. Routes may be replaced between launches.
type StaticLauncher struct {
	mu       sync.Mutex
	routes   map[string]string
	err      error
	launched int
	closed   int
	sessions []*StaticSession
}

func NewStaticLauncher(routes map[string]string) *StaticLauncher {
	return &StaticLauncher{routes: routes}
}

// FailWith makes subsequent launches fail with err. nil restores them.
func (l *StaticLauncher) FailWith(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

func (l *StaticLauncher) SetRoute(url, html string) {
	l.mu.Lock()
	if l.routes == nil {
		l.routes = map[string]string{}
	}
	l.routes[url] = html
	l.mu.Unlock()
}

func (l *StaticLauncher) Launch(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return nil, l.err
	}
	l.launched++
	session := &StaticSession{
		StaticPage: NewRoutedPage(l.routes),
		onClose: func() {
			l.mu.Lock()
			l.closed++
			l.mu.Unlock()
		},
	}
	l.sessions = append(l.sessions, session)
	return session, nil
}

// Counts reports how many sessions were launched and closed.
func (l *StaticLauncher) Counts() (launched, closed int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launched, l.closed
}

// Sessions returns every session launched so far.
func (l *StaticLauncher) Sessions() []*StaticSession {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*StaticSession(nil), l.sessions...)
}
