// client.go contains the http transport of the calculator, it knows nothing about
// the tokens or fields it is carrying.

package eoscalc

import (
	"context"
	"crypto/tls"
	"eoscollect/internal/components/assert"
	"eoscollect/internal/components/telemetry"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type ClientOptions struct {
	// Endpoint is the url of the calculator page, every exchange goes to it.
	Endpoint string
	Timeout  time.Duration
	// InsecureSkipVerify turns off tls verification, only meant for broken
	// certificate chains.
	InsecureSkipVerify bool
	CloudflareBypass   bool
	UserAgent          string
	// Output receives every full http exchange, it can be nil.
	Output telemetry.InstrumentOutput
}

type client struct {
	endpoint string
	http     *resty.Client
	tel      telemetry.API
}

func newClient(opts ClientOptions, tel telemetry.API) (*client, error) {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.Endpoint)

	endpoint, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	httpClient := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if opts.InsecureSkipVerify {
		tel.ReportWarning("client.new", "tls verification is disabled")
		httpClient.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	httpClient.SetHeader("user-agent", userAgent)
	httpClient.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(endpoint.Hostname()))

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second * 30
	}
	httpClient.SetTimeout(timeout)

	telemetry.InstrumentResty(httpClient, tel, opts.Output)

	return &client{
		endpoint: endpoint.String(),
		http:     httpClient,
		tel:      tel,
	}, nil
}

func checkStatus(res *resty.Response) error {
	if !res.IsSuccess() {
		return fmt.Errorf("unexpected status %s", res.Status())
	}
	return nil
}

// get loads the landing page.
func (c *client) get(ctx context.Context) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(c.endpoint)
	if err != nil {
		return "", err
	}
	if err := checkStatus(res); err != nil {
		return "", err
	}
	return res.String(), nil
}

// post submits a form, async marks it as a partial postback which makes the
// server answer with a delta frame.
func (c *client) post(ctx context.Context, fields url.Values, async bool) (string, error) {
	req := c.http.R().
		SetContext(ctx).
		SetFormDataFromValues(fields)
	if async {
		req.SetHeader("x-microsoftajax", "Delta=true")
		req.SetHeader("x-requested-with", "XMLHttpRequest")
		req.SetHeader("accept", "*/*")
	}

	res, err := req.Post(c.endpoint)
	if err != nil {
		return "", err
	}
	if err := checkStatus(res); err != nil {
		return "", err
	}
	return res.String(), nil
}
