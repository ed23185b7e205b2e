package appctx

import (
	"context"

	"github.com/DiyarNzar/Wifi-tester-pro/pkg/session"
)

const sessionKey key = "wifitester.session"

// WithSession stores the shared session on context.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionKey, s)
}

// Session retrieves the shared session from context.
func Session(ctx context.Context) (*session.Session, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(sessionKey).(*session.Session)
	return s, ok && s != nil
}
