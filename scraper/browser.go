package scraper

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/sirupsen/logrus"

	"pricepeek/config"
)

// domStableInterval is how long the DOM must stay unchanged to count as settled.
const domStableInterval = 300 * time.Millisecond

// RodProvider opens Chromium sessions through go-rod.
type RodProvider struct {
	cfg config.BrowserConfig
	log *logrus.Logger
}

// NewRodProvider creates a provider for the given browser settings.
func NewRodProvider(cfg config.BrowserConfig, logger *logrus.Logger) *RodProvider {
	return &RodProvider{cfg: cfg, log: logger}
}

// Open launches (or connects to) a browser, prepares a page and navigates it.
func (p *RodProvider) Open(ctx context.Context, url string) (Session, error) {
	log := p.log.WithField("url", url)
	s := &rodSession{log: log}

	wsURL := p.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().
			Context(ctx).
			Headless(p.cfg.Headless).
			NoSandbox(true).
			Leakless(false).
			Set("disable-blink-features", "AutomationControlled")
		if p.cfg.Bin != "" {
			l = l.Bin(p.cfg.Bin)
			log.WithField("bin", p.cfg.Bin).Debug("using system Chromium")
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("%w: launch: %w", ErrSessionOpen, err)
		}
		s.launcher = l
		wsURL = u
	}
	log.WithField("control_url", wsURL).Debug("browser ready")

	browser := rod.New().ControlURL(wsURL)
	if err := browser.Connect(); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: connect: %w", ErrSessionOpen, err)
	}
	s.browser = browser.NoDefaultDevice()

	page, err := p.newPage(s.browser)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: create page: %w", ErrSessionOpen, err)
	}
	s.page = page
	p.emulate(page, log)

	navCtx, cancel := context.WithTimeout(ctx, p.cfg.NavigationTimeout)
	defer cancel()
	if err := page.Context(navCtx).Navigate(url); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: navigate %s: %w", ErrSessionOpen, url, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		log.WithError(err).Warn("page load did not finish, continuing")
	}

	log.Info("🌐 page loaded")
	return s, nil
}

func (p *RodProvider) newPage(b *rod.Browser) (*rod.Page, error) {
	if p.cfg.Stealth {
		return stealth.Page(b)
	}
	return b.Page(proto.TargetCreateTarget{})
}

// emulate applies the desktop posture. Failures only weaken the disguise.
func (p *RodProvider) emulate(page *rod.Page, log *logrus.Entry) {
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      p.cfg.UserAgent,
		AcceptLanguage: p.cfg.Locale,
	}); err != nil {
		log.WithError(err).Warn("set user agent")
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             p.cfg.ViewportWidth,
		Height:            p.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		log.WithError(err).Warn("set viewport")
	}
	if p.cfg.Timezone != "" {
		if err := (proto.EmulationSetTimezoneOverride{TimezoneID: p.cfg.Timezone}).Call(page); err != nil {
			log.WithError(err).Warn("set timezone")
		}
	}
	if p.cfg.Locale != "" {
		if err := (proto.EmulationSetLocaleOverride{Locale: p.cfg.Locale}).Call(page); err != nil {
			log.WithError(err).Warn("set locale")
		}
	}
}

type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	log      *logrus.Entry
	once     sync.Once
}

func (s *rodSession) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

func (s *rodSession) ClickText(ctx context.Context, selector, text string, timeout time.Duration) error {
	pattern := `/^\s*` + regexp.QuoteMeta(text) + `\s*$/i`
	el, err := s.page.Context(ctx).Timeout(timeout).ElementR(selector, pattern)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %w", ErrElementUnavailable, selector, text, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %q: %w", text, err)
	}
	return nil
}

func (s *rodSession) ClickVisible(ctx context.Context, selector string, timeout time.Duration) error {
	el, err := s.page.Context(ctx).Timeout(timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrElementUnavailable, selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("%w: %s not visible: %w", ErrElementUnavailable, selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (s *rodSession) Settle(ctx context.Context, timeout time.Duration) error {
	return s.page.Context(ctx).Timeout(timeout).WaitDOMStable(domStableInterval, 0)
}

// Close releases the page, the browser and any launched process. Safe to
// call more than once.
func (s *rodSession) Close() error {
	var err error
	s.once.Do(func() {
		if s.page != nil {
			if perr := s.page.Close(); perr != nil {
				s.log.WithError(perr).Debug("close page")
			}
		}
		// A remote browser outlives the session; only its page is closed.
		if s.launcher != nil {
			if s.browser != nil {
				err = s.browser.Close()
			}
			s.launcher.Kill()
			s.launcher.Cleanup()
		}
		s.log.Debug("browser session closed")
	})
	return err
}
