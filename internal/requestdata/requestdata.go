package requestdata

import (
	"context"

	"github.com/myaralbdany4-glitch/MoodLens/internal/clients/identity"
)

type requestDataCtxKey struct{}

var requestDataKey = requestDataCtxKey{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey)
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// RequestData carries the resolved caller identity through the request
// context. The session cookie is handled once at the boundary; everything
// past the middleware sees only this.
type RequestData struct {
	TokenString string
	UserID      string
	Identity    *identity.Identity
}
