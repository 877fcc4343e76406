// Package testbrowser provides browsers for e2e tests
package testbrowser

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
	"github.com/supplychain-resilience/scr/internal"
	"github.com/supplychain-resilience/scr/internal/tokens"
)

const headlessEnvVar = "SCRD_E2E_HEADLESS"

var poolSize = runtime.GOMAXPROCS(0)

// Pool of browsers
type Pool struct {
	// browser shared by pool of contexts
	browser playwright.Browser
	// pool of contexts, with isolated cookie store, data dir, etc
	pool chan struct{}
	// service for creating new session in browser
	tokens *tokens.Service
}

// NewPool launches chromium. Sessions are signed with the secret, which must
// be the secret of the daemon under test.
func NewPool(secret []byte) (*Pool, func(), error) {
	tokensService, err := tokens.NewService(tokens.Options{Secret: secret})
	if err != nil {
		return nil, nil, err
	}

	// Headless mode determines whether browser window is displayed (false) or
	// not (true).
	headless := true
	if v, ok := os.LookupEnv(headlessEnvVar); ok {
		var err error
		headless, err = strconv.ParseBool(v)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing %s: %w", headlessEnvVar, err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("running playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &headless,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("launching chromium: %w", err)
	}

	p := Pool{
		pool:    make(chan struct{}, poolSize),
		tokens:  tokensService,
		browser: browser,
	}

	cleanup := func() {
		_ = browser.Close()
		_ = pw.Stop()
	}

	return &p, cleanup, nil
}

// New provides a browser page to fn, signed into the daemon listening on
// hostname as the named user. An empty username provides a page without a
// session.
func (p *Pool) New(t *testing.T, hostname, username string, fn func(playwright.Page)) {
	t.Helper()

	// Wait for space in the pool
	p.pool <- struct{}{}
	defer func() { <-p.pool }()

	browserCtx, err := p.browser.NewContext(playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: new(true),
	})
	require.NoError(t, err)
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	require.NoError(t, err)

	// In the event of a failure take a screenshot for debugging purposes.
	defer func() {
		if t.Failed() {
			fname := fmt.Sprintf("%s_failure.png", strings.ReplaceAll(t.Name(), "/", "_"))
			path := filepath.Join("screenshots", fname)

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				t.Logf("failed to make screenshots directory: %s", err.Error())
				return
			}
			if _, err := page.Screenshot(playwright.PageScreenshotOptions{Path: &path}); err != nil {
				t.Logf("failed to take screenshot: %s", err.Error())
			}
		}
	}()

	if username != "" {
		token, err := p.tokens.NewSessionToken(username, internal.CurrentTimestamp().Add(time.Hour))
		require.NoError(t, err)

		host, _, _ := strings.Cut(hostname, ":")
		err = browserCtx.AddCookies([]playwright.OptionalCookie{
			{
				Name:   tokens.SessionCookie,
				Value:  string(token),
				Domain: &host,
				Path:   new("/"),
			},
		})
		require.NoError(t, err)
	}

	fn(page)
}
