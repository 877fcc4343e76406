package update

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplychain-resilience/scr/internal/authz"
	scrhttp "github.com/supplychain-resilience/scr/internal/http"
	"github.com/supplychain-resilience/scr/internal/logr"
	"github.com/supplychain-resilience/scr/internal/supplychain"
	xhtml "golang.org/x/net/html"
)

// webClient drives the wizard through the full router, carrying the
// anti-forgery cookie and token between requests.
type webClient struct {
	t      *testing.T
	client *http.Client
	url    string
	token  string
}

func newWebClient(t *testing.T, env *testEnv) *webClient {
	t.Helper()

	router := scrhttp.NewRouter(logr.Discard(), scrhttp.ServerConfig{
		CSRFKey:  []byte(strings.Repeat("k", 32)),
		Handlers: []scrhttp.Handlers{env.svc},
		Middleware: []mux.MiddlewareFunc{func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := authz.AddSubjectToContext(r.Context(), env.user)
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		}},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &webClient{
		t:   t,
		url: srv.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// get retrieves a page, remembering any anti-forgery token it carries.
func (c *webClient) get(path string) (*http.Response, *xhtml.Node) {
	c.t.Helper()

	resp, err := c.client.Get(c.url + path)
	require.NoError(c.t, err)
	return resp, c.parse(resp)
}

// post submits a form, adding the anti-forgery token from the last page
// retrieved.
func (c *webClient) post(path string, form map[string]string) (*http.Response, *xhtml.Node) {
	c.t.Helper()

	values := url.Values{csrfField: {c.token}}
	for k, v := range form {
		values.Set(k, v)
	}
	resp, err := c.client.PostForm(c.url+path, values)
	require.NoError(c.t, err)
	return resp, c.parse(resp)
}

func (c *webClient) parse(resp *http.Response) *xhtml.Node {
	c.t.Helper()

	defer resp.Body.Close()
	doc, err := htmlquery.Parse(resp.Body)
	require.NoError(c.t, err)
	if input := htmlquery.FindOne(doc, `//input[@name='csrfmiddlewaretoken']`); input != nil {
		c.token = htmlquery.SelectAttr(input, "value")
	}
	return doc
}

func title(doc *xhtml.Node) string {
	if node := htmlquery.FindOne(doc, "//title"); node != nil {
		return htmlquery.InnerText(node)
	}
	return ""
}

func texts(doc *xhtml.Node, expr string) []string {
	var texts []string
	for _, node := range htmlquery.Find(doc, expr) {
		texts = append(texts, strings.TrimSpace(htmlquery.InnerText(node)))
	}
	return texts
}

func TestWeb_Wizard(t *testing.T) {
	env := newTestEnv(t, nil)
	c := newWebClient(t, env)

	base := "/medical-devices/build-stockpile/updates/03-2026/"

	t.Run("start", func(t *testing.T) {
		resp, _ := c.get("/medical-devices/build-stockpile/updates/start/")
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, base+"info/", resp.Header.Get("Location"))
	})

	t.Run("info page", func(t *testing.T) {
		resp, doc := c.get(base + "info/")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		assert.Equal(t, "Update information - Build stockpile update – Medical Devices – Update supply chain information", title(doc))
		assert.Equal(t,
			[]string{"1. Update information", "2. Timing", "3. Action status", "4. Confirm"},
			texts(doc, `//ol[@class='govuk-breadcrumbs__list']/li`),
		)
		assert.NotEmpty(t, c.token)
		assert.NotNil(t, htmlquery.FindOne(doc, `//textarea[@id='content']`))
		assert.Equal(t, "/medical-devices/", htmlquery.SelectAttr(htmlquery.FindOne(doc, `//a[@id='cancel']`), "href"))
	})

	t.Run("missing anti-forgery token", func(t *testing.T) {
		resp, err := c.client.PostForm(c.url+base+"info/", url.Values{"content": {"no token"}})
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("invalid info", func(t *testing.T) {
		resp, doc := c.post(base+"info/", map[string]string{"content": "  "})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		summary := htmlquery.FindOne(doc, `//div[@class='govuk-error-summary']//a`)
		require.NotNil(t, summary)
		assert.Equal(t, "#content", htmlquery.SelectAttr(summary, "href"))
		assert.Equal(t, "Enter details of the latest monthly update", htmlquery.InnerText(summary))
		assert.Contains(t, htmlquery.InnerText(htmlquery.FindOne(doc, `//p[@id='content-error']`)), "Enter details of the latest monthly update")
	})

	t.Run("save info", func(t *testing.T) {
		resp, _ := c.post(base+"info/", validInfo)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, base+"timing/", resp.Header.Get("Location"))

		_, doc := c.get(base + "info/")
		assert.Equal(t, validInfo["content"], htmlquery.InnerText(htmlquery.FindOne(doc, `//textarea[@id='content']`)))
	})

	t.Run("step off the path", func(t *testing.T) {
		resp, _ := c.get(base + "revised-timing/")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, _ = c.post(base+"revised-timing/", revisedDate)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid timing date", func(t *testing.T) {
		_, _ = c.get(base + "timing/")
		resp, doc := c.post(base+"timing/", map[string]string{
			"is_completion_date_known": "yes",
			"completion_date_day":      "31",
			"completion_date_month":    "2",
			"completion_date_year":     "2027",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		summary := htmlquery.FindOne(doc, `//div[@class='govuk-error-summary']//a`)
		require.NotNil(t, summary)
		assert.Equal(t, "#completion_date_day", htmlquery.SelectAttr(summary, "href"))
		// the entered values are kept
		day := htmlquery.FindOne(doc, `//input[@id='completion_date_day']`)
		assert.Equal(t, "31", htmlquery.SelectAttr(day, "value"))
		assert.NotNil(t, htmlquery.FindOne(doc, `//input[@id='is_completion_date_known' and @checked]`))
	})

	t.Run("complete remaining steps", func(t *testing.T) {
		resp, _ := c.post(base+"timing/", approxOneYear)
		assert.Equal(t, base+"delivery-status/", resp.Header.Get("Location"))

		resp, _ = c.post(base+"delivery-status/", validGreen)
		assert.Equal(t, base+"confirm/", resp.Header.Get("Location"))
	})

	t.Run("confirm page", func(t *testing.T) {
		resp, doc := c.get(base + "confirm/")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		assert.Equal(t, "Check your answers - Build stockpile update – Medical Devices – Update supply chain information", title(doc))
		assert.Equal(t, []string{"No", "1 year"}, texts(doc, `//dl[@id='timing-summary']//dd[@class='govuk-summary-list__value']`))
		assert.Equal(t, []string{"Green"}, texts(doc, `//dl[@id='delivery-status-summary']//dd[@class='govuk-summary-list__value']`))
		change := htmlquery.FindOne(doc, `//dl[@id='info-summary']//a`)
		assert.Equal(t, base+"info/", htmlquery.SelectAttr(change, "href"))
	})

	t.Run("submit", func(t *testing.T) {
		resp, _ := c.post(base+"confirm/", nil)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/medical-devices/", resp.Header.Get("Location"))

		resp, doc := c.get("/medical-devices/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, texts(doc, `//p[@class='govuk-notification-banner__heading']`), "Update submitted for Build stockpile")
		assert.Equal(t, "1 of 2 actions submitted", texts(doc, `//p[@id='progress']`)[0])
	})

	t.Run("submitted update redirects to review", func(t *testing.T) {
		resp, _ := c.get(base + "info/")
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, base+"review/", resp.Header.Get("Location"))

		resp, _ = c.get("/medical-devices/build-stockpile/updates/start/")
		assert.Equal(t, base+"review/", resp.Header.Get("Location"))

		resp, doc := c.get(base + "review/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Submitted on 10 March 2026", htmlquery.InnerText(htmlquery.FindOne(doc, `//p[@id='submitted-at']`)))
		assert.Contains(t, texts(doc, `//dd`), "Contracts signed with two new suppliers")
	})
}

func TestWeb_ActionWithDate(t *testing.T) {
	env := newTestEnv(t, nil)
	c := newWebClient(t, env)

	base := "/medical-devices/diversify-suppliers/updates/03-2026/"

	t.Run("review before submission", func(t *testing.T) {
		env.start(t, env.dated)

		resp, _ := c.get(base + "review/")
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, base+"info/", resp.Header.Get("Location"))
	})

	t.Run("timing is skipped", func(t *testing.T) {
		resp, doc := c.get(base + "info/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t,
			[]string{"1. Update information", "2. Action status", "3. Confirm"},
			texts(doc, `//ol[@class='govuk-breadcrumbs__list']/li`),
		)

		resp, _ = c.get(base + "timing/")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("red status reveals revised timing", func(t *testing.T) {
		resp, _ := c.post(base+"info/", validInfo)
		assert.Equal(t, base+"delivery-status/", resp.Header.Get("Location"))

		_, doc := c.get(base + "delivery-status/")
		assert.NotNil(t, htmlquery.FindOne(doc, `//div[@id='delivery_status-detail']//input[@name='will_completion_date_change']`))

		resp, _ = c.post(base+"delivery-status/", redChange)
		assert.Equal(t, base+"revised-timing/", resp.Header.Get("Location"))

		resp, doc = c.get(base + "revised-timing/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t,
			[]string{"1. Update information", "2. Action status", "3. Revised timing", "4. Confirm"},
			texts(doc, `//ol[@class='govuk-breadcrumbs__list']/li`),
		)
	})

	t.Run("incomplete update cannot be submitted", func(t *testing.T) {
		resp, doc := c.post(base+"confirm/", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		summary := htmlquery.FindOne(doc, `//div[@class='govuk-error-summary']//a`)
		require.NotNil(t, summary)
		assert.Equal(t, "Complete the revised timing section", htmlquery.InnerText(summary))
		// links to the incomplete step
		assert.Equal(t, base+"revised-timing/", htmlquery.SelectAttr(summary, "href"))
	})

	t.Run("revised timing summarised", func(t *testing.T) {
		resp, _ := c.post(base+"revised-timing/", revisedDate)
		assert.Equal(t, base+"confirm/", resp.Header.Get("Location"))

		_, doc := c.get(base + "confirm/")
		assert.NotNil(t, htmlquery.FindOne(doc, `//dl[@id='revised-timing-summary']`))
	})

	t.Run("date no longer changing drops revised timing", func(t *testing.T) {
		_, _ = c.get(base + "delivery-status/")
		resp, _ := c.post(base+"delivery-status/", redNoChange)
		assert.Equal(t, base+"confirm/", resp.Header.Get("Location"))

		resp, doc := c.get(base + "confirm/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t,
			[]string{"1. Update information", "2. Action status", "3. Confirm"},
			texts(doc, `//ol[@class='govuk-breadcrumbs__list']/li`),
		)
		assert.Nil(t, htmlquery.FindOne(doc, `//dl[@id='revised-timing-summary']`))
		assert.Equal(t, []string{"Red", "Supplier insolvency", "No"}, texts(doc, `//dl[@id='delivery-status-summary']//dd[@class='govuk-summary-list__value']`))

		resp, _ = c.get(base + "revised-timing/")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestWeb_Home(t *testing.T) {
	env := newTestEnv(t, nil)
	c := newWebClient(t, env)

	resp, doc := c.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Home - Update supply chain information", title(doc))
	assert.Equal(t, "Updates due by Tuesday 31st March 2026", texts(doc, `//p[@id='deadline']`)[0])
	assert.Equal(t, "0 of 1 updated", texts(doc, `//p[@id='progress']`)[0])
	link := htmlquery.FindOne(doc, `//table[@id='supply-chains']//a`)
	require.NotNil(t, link)
	assert.Equal(t, "/medical-devices/", htmlquery.SelectAttr(link, "href"))

	t.Run("unknown supply chain", func(t *testing.T) {
		resp, _ := c.get("/no-such-chain/")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestWeb_SupplyChainPages(t *testing.T) {
	env := newTestEnv(t, nil)
	c := newWebClient(t, env)

	t.Run("summary", func(t *testing.T) {
		for _, path := range []string{"/summary/", "/medical-devices/summary/"} {
			resp, doc := c.get(path)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "Supply chain summary - Update supply chain information", title(doc))
			assert.Contains(t, texts(doc, `//dl[@id='medical-devices-summary']//dd`), "Not yet updated")
		}
	})

	t.Run("strategic actions", func(t *testing.T) {
		resp, doc := c.get("/medical-devices/strategic-actions/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{"Build stockpile", "Diversify suppliers"}, texts(doc, `//div[@id='strategic-actions']/h2`))
		assert.Equal(t,
			[]string{"Not set", "31 March 2027"},
			texts(doc, `//div[@id='strategic-actions']//dl/div[2]/dd`),
		)
	})

	t.Run("strategic actions of unknown supply chain", func(t *testing.T) {
		resp, _ := c.get("/no-such-chain/strategic-actions/")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("complete before every action submitted", func(t *testing.T) {
		resp, _ := c.get("/medical-devices/complete/")
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/medical-devices/", resp.Header.Get("Location"))
	})

	t.Run("submitting the last action completes the supply chain", func(t *testing.T) {
		undated := env.start(t, env.undated)
		env.submit(t, undated, Info, validInfo)
		env.submit(t, undated, Timing, approxOneYear)
		env.submit(t, undated, DeliveryStatus, validGreen)
		env.confirm(t, undated)

		dated := env.start(t, env.dated)
		env.submit(t, dated, Info, validInfo)
		env.submit(t, dated, DeliveryStatus, validGreen)

		base := "/medical-devices/diversify-suppliers/updates/03-2026/"
		_, _ = c.get(base + "confirm/")
		resp, _ := c.post(base+"confirm/", nil)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/medical-devices/complete/", resp.Header.Get("Location"))

		resp, doc := c.get("/medical-devices/complete/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, texts(doc, `//p[@class='govuk-notification-banner__heading']`), "Update submitted for Diversify suppliers")
		assert.Equal(t, "1 of 1 supply chains updated", texts(doc, `//p[@id='progress']`)[0])

		_, doc = c.get("/summary/")
		assert.Contains(t, texts(doc, `//dl[@id='medical-devices-summary']//dd`), "10 March 2026")
	})

	t.Run("strategic actions are paginated", func(t *testing.T) {
		for _, name := range []string{"Action 1", "Action 2", "Action 3", "Action 4", "Action 5"} {
			_, err := env.chains.CreateStrategicAction(env.ctx, supplychain.CreateStrategicActionOptions{
				SupplyChainSlug: env.chain.Slug,
				Name:            name,
			})
			require.NoError(t, err)
		}

		_, doc := c.get("/medical-devices/strategic-actions/")
		assert.Len(t, texts(doc, `//div[@id='strategic-actions']/h2`), 5)
		assert.Equal(t, "Page 1 of 2", texts(doc, `//span[@class='govuk-pagination__current']`)[0])

		_, doc = c.get("/medical-devices/strategic-actions/?page=2")
		assert.Equal(t, []string{"Build stockpile", "Diversify suppliers"}, texts(doc, `//div[@id='strategic-actions']/h2`))
	})
}
