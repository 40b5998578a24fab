// Package wms reads the capabilities document of remote Web Map Services.
package wms

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
)

// Config represents configuration for the WMS client
type Config struct {
	Timeout         time.Duration // per request timeout, default 30s
	MaxRetries      uint          // attempts per capabilities fetch, default 3
	InitialInterval time.Duration // first retry delay, default 500ms
	UserAgent       string
	HTTPClient      *http.Client
}

// Client fetches and parses WMS capabilities documents. It implements
// storeinfo.ServiceOpener.
type Client struct {
	http            *http.Client
	maxRetries      uint
	initialInterval time.Duration
	userAgent       string
}

// New creates a WMS client
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "simple-storeinfo"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		http:            httpClient,
		maxRetries:      cfg.MaxRetries,
		initialInterval: cfg.InitialInterval,
		userAgent:       cfg.UserAgent,
	}
}

// OpenService validates the capabilities URL of store. No request is made
// until Capabilities is called.
func (c *Client) OpenService(ctx context.Context, store *storeinfo.ServiceStore) (storeinfo.RemoteService, error) {
	capsURL, err := CapabilitiesURL(store.CapabilitiesURL)
	if err != nil {
		return nil, &storeinfo.BackendError{Store: storeinfo.QualifiedName(store), Op: "open", Err: err}
	}
	return &remoteService{client: c, url: capsURL}, nil
}

type remoteService struct {
	client *Client
	url    string
}

func (r *remoteService) Capabilities(ctx context.Context) (*storeinfo.Capabilities, error) {
	return r.client.GetCapabilities(ctx, r.url)
}

func (r *remoteService) Close() error { return nil }

// GetCapabilities fetches and parses the capabilities document at
// capsURL, retrying transport failures and 5xx responses with exponential
// backoff.
func (c *Client) GetCapabilities(ctx context.Context, capsURL string) (*storeinfo.Capabilities, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval

	return backoff.Retry(ctx, func() (*storeinfo.Capabilities, error) {
		return c.fetch(ctx, capsURL)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(c.maxRetries))
}

func (c *Client) fetch(ctx context.Context, capsURL string) (*storeinfo.Capabilities, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, capsURL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/vnd.ogc.wms_xml, text/xml, application/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch capabilities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("capabilities request returned %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(fmt.Errorf("capabilities request returned %s", resp.Status))
	}

	caps, err := Parse(resp.Body)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	return caps, nil
}

// CapabilitiesURL adds SERVICE=WMS and REQUEST=GetCapabilities to raw
// unless already present (parameter names match case-insensitively).
func CapabilitiesURL(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: capabilities url", storeinfo.ErrMissingParameter)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid capabilities url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q", storeinfo.ErrUnsupportedBackend, u.Scheme)
	}

	have := make(map[string]bool)
	for k := range u.Query() {
		have[strings.ToUpper(k)] = true
	}
	var extra []string
	if !have["SERVICE"] {
		extra = append(extra, "SERVICE=WMS")
	}
	if !have["REQUEST"] {
		extra = append(extra, "REQUEST=GetCapabilities")
	}
	if len(extra) == 0 {
		return raw, nil
	}
	if u.RawQuery != "" {
		u.RawQuery += "&"
	}
	u.RawQuery += strings.Join(extra, "&")
	return u.String(), nil
}

type capabilitiesDoc struct {
	XMLName xml.Name
	Version string `xml:"version,attr"`
	Service struct {
		Title string `xml:"Title"`
	} `xml:"Service"`
	Layers []layerDoc `xml:"Capability>Layer"`
}

type layerDoc struct {
	Name     string     `xml:"Name"`
	Title    string     `xml:"Title"`
	Abstract string     `xml:"Abstract"`
	Layers   []layerDoc `xml:"Layer"`
}

// ErrNotCapabilities indicates the document is not a WMS capabilities document
var ErrNotCapabilities = errors.New("not a WMS capabilities document")

// Parse reads a WMS 1.1.1 or 1.3.0 capabilities document. Layers are
// flattened depth first; only named layers are returned.
func Parse(r io.Reader) (*storeinfo.Capabilities, error) {
	var doc capabilitiesDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse capabilities: %w", err)
	}
	switch doc.XMLName.Local {
	case "WMT_MS_Capabilities", "WMS_Capabilities":
	default:
		return nil, fmt.Errorf("%w: root element %q", ErrNotCapabilities, doc.XMLName.Local)
	}

	caps := &storeinfo.Capabilities{
		Version: doc.Version,
		Title:   strings.TrimSpace(doc.Service.Title),
		Layers:  []storeinfo.RemoteLayer{},
	}
	var walk func(layers []layerDoc)
	walk = func(layers []layerDoc) {
		for _, l := range layers {
			if name := strings.TrimSpace(l.Name); name != "" {
				caps.Layers = append(caps.Layers, storeinfo.RemoteLayer{
					Name:     name,
					Title:    strings.TrimSpace(l.Title),
					Abstract: strings.TrimSpace(l.Abstract),
				})
			}
			walk(l.Layers)
		}
	}
	walk(doc.Layers)
	return caps, nil
}
