// 文件路径: internal/service/relay.go
// 模块说明: 出站转发：订阅过滤（只保留 proxies）与通用透传代理。
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Zhousiru/clashub/internal/auth/session"
	"github.com/Zhousiru/clashub/internal/clash"
	"github.com/Zhousiru/clashub/internal/repository"
)

const (
	defaultUserAgent      = "Clashub/1.0"
	defaultClientIPHeader = "CF-Connecting-IP"
	unknownClientIP       = "unknown"
)

// relayedHeaders is the allow-list of upstream response headers copied to the caller.
var relayedHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Content-Encoding",
	"Content-Disposition",
	"Cache-Control",
	"Expires",
	"Last-Modified",
	"Etag",
}

// RelayOptions configures NewRelayService.
type RelayOptions struct {
	UserAgent      string
	ClientIPHeader string
	Client         *http.Client
	Logger         *slog.Logger
	// Registerer receives the upstream counters. Nil leaves them unregistered.
	Registerer prometheus.Registerer
	Namespace  string
}

// RelayService fetches stored targets on behalf of API callers.
type RelayService struct {
	providers      repository.ProxyProviderRepository
	fetchers       repository.FetcherRepository
	client         *http.Client
	userAgent      string
	clientIPHeader string
	logger         *slog.Logger
	upstreamTotal  *prometheus.CounterVec
}

// FilteredSubscription is a subscription reduced to its proxies list.
type FilteredSubscription struct {
	SourceID string
	Body     []byte
}

// Relayed is an upstream response already reduced to the allow-listed headers.
// Callers must close Body.
type Relayed struct {
	FetcherID  string
	TargetURL  string
	StatusCode int
	StatusText string
	Header     http.Header
	Body       io.ReadCloser
}

// NewRelayService wires repositories and the outbound client.
func NewRelayService(providers repository.ProxyProviderRepository, fetchers repository.FetcherRepository, opts RelayOptions) *RelayService {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.ClientIPHeader == "" {
		opts.ClientIPHeader = defaultClientIPHeader
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Namespace == "" {
		opts.Namespace = "clashub"
	}
	return &RelayService{
		providers:      providers,
		fetchers:       fetchers,
		client:         opts.Client,
		userAgent:      opts.UserAgent,
		clientIPHeader: opts.ClientIPHeader,
		logger:         opts.Logger,
		upstreamTotal: promauto.With(opts.Registerer).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: opts.Namespace,
				Subsystem: "relay",
				Name:      "upstream_total",
				Help:      "Outbound relay requests by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
	}
}

// FilterProvider fetches the provider's subscription and keeps only its proxies list.
func (s *RelayService) FilterProvider(ctx context.Context, id string) (*FilteredSubscription, error) {
	provider, err := s.providers.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, provider.SubscriptionURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build subscription request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.observe("provider", "connection_error")
		return nil, &ConnectionError{Target: provider.SubscriptionURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		s.observe("provider", "upstream_error")
		return nil, &UpstreamError{StatusCode: resp.StatusCode, StatusText: reasonPhrase(resp)}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		s.observe("provider", "connection_error")
		return nil, &ConnectionError{Target: provider.SubscriptionURL, Err: err}
	}

	body, err := clash.ExtractProxies(payload)
	if err != nil {
		s.observe("provider", "format_error")
		return nil, &FormatError{Reason: err.Error()}
	}
	s.observe("provider", "ok")
	return &FilteredSubscription{SourceID: provider.ID, Body: body}, nil
}

// Forward relays in to the fetcher's URL. The caller's token parameter is never forwarded.
func (s *RelayService) Forward(ctx context.Context, id string, in *http.Request) (*Relayed, error) {
	fetcher, err := s.fetchers.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	target, err := mergeQuery(fetcher.URL, in.URL.Query())
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if in.Method != http.MethodGet && in.Method != http.MethodHead && in.Body != nil {
		body = in.Body
	}
	req, err := http.NewRequestWithContext(ctx, in.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build relay request: %w", err)
	}
	if body != nil {
		req.ContentLength = in.ContentLength
		if ct := in.Header.Get("Content-Type"); ct != "" {
			req.Header.Set("Content-Type", ct)
		}
	}
	clientIP := in.Header.Get(s.clientIPHeader)
	if clientIP == "" {
		clientIP = unknownClientIP
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("X-Forwarded-For", clientIP)
	req.Header.Set("X-Real-IP", clientIP)

	resp, err := s.client.Do(req)
	if err != nil {
		s.observe("fetcher", "connection_error")
		return nil, &ConnectionError{Target: target, Err: err}
	}

	header := make(http.Header)
	for _, name := range relayedHeaders {
		if value := resp.Header.Get(name); value != "" {
			header.Set(name, value)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.observe("fetcher", "upstream_error")
		s.logger.Warn("relay upstream returned error status", "fetcher_id", fetcher.ID, "status", resp.StatusCode)
	} else {
		s.observe("fetcher", "ok")
	}
	return &Relayed{
		FetcherID:  fetcher.ID,
		TargetURL:  target,
		StatusCode: resp.StatusCode,
		StatusText: reasonPhrase(resp),
		Header:     header,
		Body:       resp.Body,
	}, nil
}

func (s *RelayService) observe(kind, outcome string) {
	s.upstreamTotal.WithLabelValues(kind, outcome).Inc()
}

// mergeQuery overlays every inbound parameter except the session token onto raw.
func mergeQuery(raw string, inbound url.Values) (string, error) {
	target, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse fetcher url: %w", err)
	}
	merged := false
	query := target.Query()
	for key, values := range inbound {
		if key == session.QueryParam {
			continue
		}
		query.Del(key)
		for _, v := range values {
			query.Add(key, v)
		}
		merged = true
	}
	if merged {
		target.RawQuery = query.Encode()
	}
	return target.String(), nil
}

// reasonPhrase returns the upstream status text without the numeric code.
func reasonPhrase(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	text = strings.TrimSpace(text)
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
