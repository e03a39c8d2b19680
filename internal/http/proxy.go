package http

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ChatProxy forwards /api/v1/chat/* requests to the AI assistant
// backend with the prefix stripped. Bodies pass through untouched in
// both directions so streamed answers reach the client as the backend
// emits them.
type ChatProxy struct {
	proxy *httputil.ReverseProxy
	log   zerolog.Logger
}

func NewChatProxy(baseURL string, log zerolog.Logger) (*ChatProxy, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.Out.URL.Path = joinPath(target.Path, chatPath(r.In.URL.Path))
			r.Out.Host = target.Host
		},
		// Streamed (SSE) responses must not sit in a buffer.
		FlushInterval: -1,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("chat backend unreachable")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"error":"cannot connect to chat assistant"}`))
		},
	}

	return &ChatProxy{proxy: proxy, log: log}, nil
}

func (p *ChatProxy) Forward(c *gin.Context) {
	p.proxy.ServeHTTP(c.Writer, c.Request)
}

func chatPath(requestPath string) string {
	const prefix = "/api/v1/chat"
	trimmed := strings.TrimPrefix(requestPath, prefix)
	if trimmed == "" {
		return "/"
	}
	return trimmed
}

func joinPath(base, rest string) string {
	base = strings.TrimSuffix(base, "/")
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return base + rest
}
