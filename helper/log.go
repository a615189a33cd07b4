package helper

import (
	"context"

	"github.com/compilepool/poold/sloghelper"
)

// LogConfigFunc lifts a request-id out of an inbound header map and stamps
// it onto ctx so every logger pulled from sloghelper for the remainder of
// that request's lifetime tags its lines with it.
func LogConfigFunc(ctx context.Context, headers map[string]string) context.Context {
	for k, v := range headers {
		if k == sloghelper.RequestIDKey {
			ctx = sloghelper.WithValue(ctx, sloghelper.RequestIDContextKey, v)
		}
	}
	return ctx
}
