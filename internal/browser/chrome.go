// Package browser implements the dom capability on a headless Chrome driven
// through chromedp. Each Launch starts its own browser process.
package browser

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/kapu/aion2-character-go/internal/config"
	"github.com/kapu/aion2-character-go/internal/dom"
	"github.com/kapu/aion2-character-go/pkg/errors"
)

type Launcher struct {
	cfg    config.BrowserConfig
	logger *zap.Logger
}

func NewLauncher(cfg config.BrowserConfig, logger *zap.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{cfg: cfg, logger: logger}
}

func (l *Launcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(l.cfg.UserAgent),
	)
	if l.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.cfg.ExecPath))
	}
	return opts
}

// Launch starts a browser and opens one tab. ctx bounds startup only; once
// started the browser lives until Close.
func (l *Launcher) Launch(ctx context.Context) (dom.Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), l.allocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		cfg:         l.cfg,
		logger:      l.logger,
		url:         "about:blank",
	}

	if err := ctx.Err(); err != nil {
		_ = s.Close()
		return nil, err
	}
	// The browser process is bound to the context of the first Run, so it
	// must be tabCtx itself and not a derived timeout context. ctx still
	// aborts a startup that hangs.
	stop := context.AfterFunc(ctx, tabCancel)
	err := chromedp.Run(tabCtx)
	if !stop() {
		err = ctx.Err()
	}
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	l.logger.Debug("Browser session started", zap.Bool("headless", l.cfg.Headless))
	return s, nil
}

// Session is one browser process with a single tab.
type Session struct {
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	cfg         config.BrowserConfig
	logger      *zap.Logger
	url         string
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.tabCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.tabCtx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func (s *Session) URL() string {
	return s.url
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, s.cfg.PageLoadTimeout, chromedp.Navigate(url)); err != nil {
		return errors.NewNavigationError("navigation failed", url, err)
	}
	s.url = url
	return nil
}

func (s *Session) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Session) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := s.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return errors.NewNavigationError("timed out waiting for "+selector, s.url, err)
	}
	return nil
}

func (s *Session) Find(ctx context.Context, selector string) (dom.Selection, error) {
	nodes, err := s.queryAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	return &selection{session: s, nodes: nodes}, nil
}

func (s *Session) Close() error {
	var err error
	if s.tabCtx != nil {
		err = chromedp.Cancel(s.tabCtx)
	}
	s.tabCancel()
	s.allocCancel()
	if err != nil && !stderrors.Is(err, context.Canceled) {
		s.logger.Warn("Browser close failed", zap.Error(err))
		return err
	}
	return nil
}

// queryAll resolves selector without waiting for it to appear.
func (s *Session) queryAll(ctx context.Context, selector string, from ...*cdp.Node) ([]*cdp.Node, error) {
	opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	if len(from) > 0 && from[0] != nil {
		opts = append(opts, chromedp.FromNode(from[0]))
	}

	var nodes []*cdp.Node
	if err := s.run(ctx, s.cfg.PageLoadTimeout, chromedp.Nodes(selector, &nodes, opts...)); err != nil {
		return nil, fmt.Errorf("query %q failed: %w", selector, err)
	}
	return nodes, nil
}

type selection struct {
	session *Session
	nodes   []*cdp.Node
}

func (s *selection) Len() int {
	return len(s.nodes)
}

func (s *selection) At(i int) dom.Selection {
	if i < 0 || i >= len(s.nodes) {
		return &selection{session: s.session}
	}
	return &selection{session: s.session, nodes: s.nodes[i : i+1]}
}

func (s *selection) Find(ctx context.Context, selector string) (dom.Selection, error) {
	var found []*cdp.Node
	for _, n := range s.nodes {
		nodes, err := s.session.queryAll(ctx, selector, n)
		if err != nil {
			return nil, err
		}
		found = append(found, nodes...)
	}
	return &selection{session: s.session, nodes: found}, nil
}

func (s *selection) Text(ctx context.Context) (string, error) {
	if len(s.nodes) == 0 {
		return "", dom.ErrNoElement
	}
	return s.session.nodeText(ctx, s.nodes[0])
}

func (s *selection) Attr(ctx context.Context, name string) (string, bool, error) {
	if len(s.nodes) == 0 {
		return "", false, dom.ErrNoElement
	}

	var (
		value string
		ok    bool
	)
	ids := []cdp.NodeID{s.nodes[0].NodeID}
	if err := s.session.run(ctx, s.session.cfg.PageLoadTimeout,
		chromedp.AttributeValue(ids, name, &value, &ok, chromedp.ByNodeID)); err != nil {
		return "", false, fmt.Errorf("attribute %q failed: %w", name, err)
	}
	return value, ok, nil
}

func (s *selection) Click(ctx context.Context) error {
	if len(s.nodes) == 0 {
		return dom.ErrNoElement
	}
	if err := s.session.run(ctx, s.session.cfg.PageLoadTimeout, chromedp.MouseClickNode(s.nodes[0])); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (s *selection) HasText(ctx context.Context, substrs ...string) (dom.Selection, error) {
	kept := make([]*cdp.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		text, err := s.session.nodeText(ctx, n)
		if err != nil {
			return nil, err
		}
		for _, substr := range substrs {
			if strings.Contains(text, substr) {
				kept = append(kept, n)
				break
			}
		}
	}
	return &selection{session: s.session, nodes: kept}, nil
}

func (s *Session) nodeText(ctx context.Context, n *cdp.Node) (string, error) {
	var text string
	ids := []cdp.NodeID{n.NodeID}
	if err := s.run(ctx, s.cfg.PageLoadTimeout, chromedp.Text(ids, &text, chromedp.ByNodeID)); err != nil {
		return "", fmt.Errorf("text failed: %w", err)
	}
	return text, nil
}

var (
	_ dom.Launcher = (*Launcher)(nil)
	_ dom.Session  = (*Session)(nil)
)
