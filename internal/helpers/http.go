package helpers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/isometry/zadarma-go/internal/models"
)

type httpResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// RespondHTTP writes response to rw. Plain-text responses are written verbatim; anything else is
// wrapped in a JSON envelope carrying err, if any.
func RespondHTTP(response models.Response, err error, rw http.ResponseWriter) {
	for k, v := range response.Headers {
		rw.Header().Set(k, v)
	}
	statusCode := response.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}

	if strings.HasPrefix(rw.Header().Get("Content-Type"), "text/plain") {
		rw.WriteHeader(statusCode)
		_, _ = rw.Write([]byte(response.Body))
		return
	}

	hR := httpResponse{
		Message: response.Body,
	}
	if err != nil {
		hR.Error = err.Error()
	}
	respBody, _ := json.Marshal(hR)
	if rw.Header().Get("Content-Type") == "" {
		rw.Header().Set("Content-Type", "application/json")
	}
	rw.WriteHeader(statusCode)
	_, _ = rw.Write(respBody)
}
