package adminrouter

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/goliatone/go-router"
	"github.com/goliatone/go-shopadmin/adapters/adminapi"
)

var (
	_ adminapi.Request  = catalogRequest{}
	_ adminapi.Response = catalogResponse{}
)

// catalogRequest reads catalog list parameters from a go-router context.
type catalogRequest struct {
	ctx router.Context
}

func (req catalogRequest) Context() context.Context {
	if req.ctx == nil {
		return context.Background()
	}
	return req.ctx.Context()
}

func (req catalogRequest) Method() string {
	if req.ctx == nil {
		return ""
	}
	return req.ctx.Method()
}

func (req catalogRequest) Path() string {
	if req.ctx == nil {
		return ""
	}
	return req.ctx.Path()
}

// Values parses the raw query string. router.Context.Query returns only
// the first value of a key, which would drop repeated col.<field> filters.
func (req catalogRequest) Values() url.Values {
	if req.ctx == nil {
		return url.Values{}
	}
	if httpCtx, ok := router.AsHTTPContext(req.ctx); ok {
		if httpReq := httpCtx.Request(); httpReq != nil && httpReq.URL != nil {
			return httpReq.URL.Query()
		}
	}
	_, raw, _ := strings.Cut(req.ctx.OriginalURL(), "?")
	values, _ := url.ParseQuery(raw)
	return values
}

func (req catalogRequest) Body() io.ReadCloser {
	if req.ctx == nil {
		return nil
	}
	body := req.ctx.Body()
	if len(body) == 0 {
		return nil
	}
	return io.NopCloser(bytes.NewReader(body))
}

// catalogResponse buffers export downloads through Send, so it works on
// adapters that expose no http.ResponseWriter.
type catalogResponse struct {
	ctx router.Context
}

func (res catalogResponse) SetHeader(name, value string) {
	if res.ctx != nil {
		res.ctx.SetHeader(name, value)
	}
}

func (res catalogResponse) WriteHeader(status int) {
	if res.ctx != nil {
		res.ctx.Status(status)
	}
}

func (res catalogResponse) Write(data []byte) (int, error) {
	if res.ctx == nil {
		return 0, nil
	}
	if err := res.ctx.Send(data); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (res catalogResponse) WriteJSON(status int, payload any) error {
	if res.ctx == nil {
		return nil
	}
	return res.ctx.JSON(status, payload)
}
