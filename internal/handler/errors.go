package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/serendigo/serendigo-backend-go/internal/backend"
	"github.com/serendigo/serendigo-backend-go/pkg/response"
)

// backendError relays a failed backend call. Client errors keep their
// status and server detail; everything else becomes a 502.
func backendError(c *gin.Context, message string, err error) {
	var herr *backend.HTTPError
	if errors.As(err, &herr) {
		status := http.StatusBadGateway
		if herr.StatusCode >= 400 && herr.StatusCode < 500 {
			status = herr.StatusCode
		}
		response.Error(c, status, message+": "+herr.Detail(), err)
		return
	}
	response.Error(c, http.StatusBadGateway, message, err)
}
