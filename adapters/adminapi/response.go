package adminapi

// Response is what the controller writes catalog results, export
// downloads and errors through.
type Response interface {
	SetHeader(name, value string)
	WriteHeader(status int)
	Write(data []byte) (int, error)
	WriteJSON(status int, payload any) error
}

// ErrorResponse describes JSON error responses.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains error details.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// EntityInfo lists one configured entity.
type EntityInfo struct {
	Entity string `json:"entity"`
	Path   string `json:"path"`
}

// DeleteResponse reports a bulk delete.
type DeleteResponse struct {
	Removed int `json:"removed"`
}

// RemoteSearchResponse reports a remote search run.
type RemoteSearchResponse struct {
	Applied bool `json:"applied"`
}
