// Package browser drives a real Chrome/Chromium session for the
// Instagram flows that need a logged-in page: username detection and
// collecting saved-post links. The session is deliberately not
// headless; Instagram blocks headless browsers.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	errs "smd/pkg/errors"
	"smd/pkg/logger"
)

const (
	instagramHome    = "https://www.instagram.com/"
	instagramEditURL = "https://www.instagram.com/accounts/edit/"
)

// Session wraps a live browser connection.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	log     logger.Logger
}

// NewSession launches a visible browser and connects to it.
func NewSession(log logger.Logger) (*Session, error) {
	l := launcher.New().
		Headless(false).
		NoSandbox(true).
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, "launching browser", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, "connecting to browser", err)
	}

	return &Session{browser: b, log: log}, nil
}

// OpenInstagram navigates to the Instagram home page so the user can
// log in manually.
func (s *Session) OpenInstagram(ctx context.Context) error {
	page, err := s.browser.Page(proto.TargetCreateTarget{URL: instagramHome})
	if err != nil {
		return errs.Wrap(errs.ErrorTypeNetwork, "opening instagram", err)
	}
	s.page = page

	if err := page.Context(ctx).WaitLoad(); err != nil {
		s.log.WarnWithFields("page load wait failed, continuing", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return nil
}

// DetectUsername reads the logged-in account's username from the
// profile edit page. An empty string means detection failed.
func (s *Session) DetectUsername(ctx context.Context) string {
	if s.page == nil {
		return ""
	}

	if err := s.page.Context(ctx).Navigate(instagramEditURL); err != nil {
		s.log.DebugWithFields("cannot open profile edit page", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}
	if err := s.page.Context(ctx).WaitLoad(); err != nil {
		return ""
	}

	el, err := s.page.Context(ctx).Element("input[name='username']")
	if err != nil {
		return ""
	}
	value, err := el.Property("value")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(value.String())
}

// CollectSavedPosts scrolls the saved-posts grid of the given account
// collecting post links until maxCount links are found or no new
// content loads.
func (s *Session) CollectSavedPosts(ctx context.Context, username string, maxCount int) ([]string, error) {
	if s.page == nil {
		return nil, errs.New(errs.ErrorTypeValidation, "no open page")
	}

	savedURL := fmt.Sprintf("https://www.instagram.com/%s/saved/all-posts/", username)
	if err := s.page.Context(ctx).Navigate(savedURL); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, "opening saved posts", err)
	}
	if err := s.page.Context(ctx).WaitLoad(); err != nil {
		s.log.WarnWithFields("saved posts load wait failed, continuing", map[string]interface{}{
			"error": err.Error(),
		})
	}

	seen := make(map[string]bool)
	var links []string
	lastHeight := s.pageHeight(ctx)

	for len(links) < maxCount {
		if ctx.Err() != nil {
			break
		}

		elements, err := s.page.Context(ctx).Elements("a[href*='/p/']")
		if err == nil {
			for _, el := range elements {
				href, attrErr := el.Attribute("href")
				if attrErr != nil || href == nil || *href == "" {
					continue
				}
				link := absoluteLink(*href)
				if seen[link] {
					continue
				}
				seen[link] = true
				links = append(links, link)
				if len(links) >= maxCount {
					break
				}
			}
		}
		if len(links) >= maxCount {
			break
		}

		s.scrollToBottom(ctx)
		time.Sleep(2 * time.Second)

		newHeight := s.pageHeight(ctx)
		if newHeight == lastHeight {
			break
		}
		lastHeight = newHeight
	}

	s.log.InfoWithFields("collected saved posts", map[string]interface{}{
		"count": len(links),
	})
	return links, nil
}

// Close shuts the browser down.
func (s *Session) Close() {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.log.DebugWithFields("browser close failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func (s *Session) pageHeight(ctx context.Context) int {
	res, err := s.page.Context(ctx).Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}

func (s *Session) scrollToBottom(ctx context.Context) {
	_, err := s.page.Context(ctx).Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	if err != nil {
		s.log.DebugWithFields("scroll failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func absoluteLink(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return "https://www.instagram.com" + href
}
