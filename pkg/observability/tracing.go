package observability

import (
	"context"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Capture runs fn inside an X-Ray subsegment when a trace is active and
// falls through to a plain call otherwise, so local and test code paths
// need no tracing setup.
func Capture(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if xray.GetSegment(ctx) == nil {
		return fn(ctx)
	}
	return xray.Capture(ctx, name, fn)
}
