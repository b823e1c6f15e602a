package adminhttp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/goliatone/go-shopadmin/adapters/adminapi"
)

var (
	_ adminapi.Request  = catalogRequest{}
	_ adminapi.Response = catalogResponse{}
)

type catalogRequest struct {
	r *http.Request
}

func (req catalogRequest) Context() context.Context {
	if req.r == nil {
		return context.Background()
	}
	return req.r.Context()
}

func (req catalogRequest) Method() string {
	if req.r == nil {
		return ""
	}
	return req.r.Method
}

func (req catalogRequest) Path() string {
	if req.r == nil || req.r.URL == nil {
		return ""
	}
	return req.r.URL.Path
}

func (req catalogRequest) Values() url.Values {
	if req.r == nil || req.r.URL == nil {
		return url.Values{}
	}
	return req.r.URL.Query()
}

func (req catalogRequest) Body() io.ReadCloser {
	if req.r == nil || req.r.Body == nil || req.r.Body == http.NoBody {
		return nil
	}
	return req.r.Body
}

type catalogResponse struct {
	w http.ResponseWriter
}

func (res catalogResponse) SetHeader(name, value string) {
	res.w.Header().Set(name, value)
}

func (res catalogResponse) WriteHeader(status int) {
	res.w.WriteHeader(status)
}

func (res catalogResponse) Write(data []byte) (int, error) {
	return res.w.Write(data)
}

func (res catalogResponse) WriteJSON(status int, payload any) error {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	return json.NewEncoder(res.w).Encode(payload)
}
