// Package collyfetcher implements the content source using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/topic-classifier/internal/metrics"
	"github.com/JakeFAU/topic-classifier/internal/textproc"
)

// Renderer renders a page with JavaScript executed and returns its paragraph
// text. Used as a fallback when the static fetch yields nothing.
type Renderer interface {
	RenderText(ctx context.Context, url string) (string, error)
}

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Source fetches a URL, extracts its paragraph text, and preprocesses it.
// It implements classify.ContentSource.
type Source struct {
	cfg           Config
	baseCollector *colly.Collector
	renderer      Renderer
	logger        *zap.Logger
}

// New builds a Source. renderer may be nil to disable the headless fallback.
func New(cfg Config, renderer Renderer, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := colly.NewCollector(colly.Async(false))
	c.WithTransport(newHTTPTransport())

	return &Source{
		cfg:           cfg,
		baseCollector: c,
		renderer:      renderer,
		logger:        logger,
	}
}

// FetchText fetches url and returns its preprocessed paragraph text. Script
// heavy pages that serve no static paragraphs are retried through the
// headless renderer when one is configured.
func (s *Source) FetchText(ctx context.Context, url string) (string, error) {
	start := time.Now()
	text, err := s.fetchStatic(ctx, url)
	if err != nil {
		metrics.ObserveFetch(time.Since(start), false)
		return "", err
	}

	if strings.TrimSpace(text) == "" && s.renderer != nil {
		s.logger.Debug("no static paragraph text, falling back to headless", zap.String("url", url))
		text, err = s.renderer.RenderText(ctx, url)
		if err != nil {
			metrics.ObserveFetch(time.Since(start), false)
			return "", fmt.Errorf("headless render: %w", err)
		}
	}

	metrics.ObserveFetch(time.Since(start), true)
	return textproc.Preprocess(text), nil
}

func (s *Source) fetchStatic(ctx context.Context, url string) (string, error) {
	collector := s.baseCollector.Clone()
	if s.cfg.UserAgent != "" {
		collector.UserAgent = s.cfg.UserAgent
	}
	timeout := s.cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	var (
		paragraphs []string
		fetchErr   error
	)
	collector.OnHTML("p", func(e *colly.HTMLElement) {
		paragraphs = append(paragraphs, e.Text)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("visit failed: %w", err)
		}
		if fetchErr != nil {
			return "", fmt.Errorf("response failed: %w", fetchErr)
		}
	}
	return strings.Join(paragraphs, " "), nil
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
