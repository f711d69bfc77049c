// Package connect provides the Connect RPC surface of the widget.
package connect

import (
	"context"
	"crypto/subtle"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"

	"github.com/osa030/versionbox/internal/infra/config"
)

const (
	// TokenHeader is the header name for the widget access token.
	TokenHeader = "X-Widget-Token"
)

var errInvalidToken = errors.New("invalid widget token")

// TokenInterceptor validates the widget token on unary and streaming calls.
// It is a no-op when no token is configured.
type TokenInterceptor struct {
	token string
}

// NewTokenInterceptor creates an interceptor for the configured server token.
func NewTokenInterceptor(cfg *config.Config) *TokenInterceptor {
	return &TokenInterceptor{token: cfg.Server.Token}
}

var _ connect.Interceptor = (*TokenInterceptor)(nil)

func (i *TokenInterceptor) check(got string) error {
	if i.token == "" {
		return nil
	}
	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(i.token)) != 1 {
		return connect.NewError(connect.CodeUnauthenticated, errInvalidToken)
	}
	return nil
}

// WrapUnary implements connect.Interceptor.
func (i *TokenInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}
		if err := i.check(req.Header().Get(TokenHeader)); err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

// WrapStreamingClient implements connect.Interceptor.
func (i *TokenInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler implements connect.Interceptor.
func (i *TokenInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		if err := i.check(conn.RequestHeader().Get(TokenHeader)); err != nil {
			return err
		}
		return next(ctx, conn)
	}
}

// ClientToken returns an interceptor that attaches a token to outgoing calls.
func ClientToken(token string) connect.Interceptor {
	return &clientToken{token: token}
}

type clientToken struct {
	token string
}

func (c *clientToken) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if c.token != "" {
			req.Header().Set(TokenHeader, c.token)
		}
		return next(ctx, req)
	}
}

func (c *clientToken) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return func(ctx context.Context, spec connect.Spec) connect.StreamingClientConn {
		conn := next(ctx, spec)
		if c.token != "" {
			conn.RequestHeader().Set(TokenHeader, c.token)
		}
		return conn
	}
}

func (c *clientToken) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}
