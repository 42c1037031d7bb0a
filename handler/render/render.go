package render

import (
	"encoding/json"
	"net/http"

	"github.com/mars-protocol/v1-core-sub001/core"
)

// H shortcut for a json object
type H map[string]interface{}

// JSON render with json
func JSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	_ = json.NewEncoder(w).Encode(v)
}

// Error write an error response; known business errors keep their code
func Error(w http.ResponseWriter, statusCode int, err error) {
	code := int(core.ErrUnknown)
	if e, ok := err.(core.ErrorCode); ok {
		code = int(e)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	_ = json.NewEncoder(w).Encode(H{"code": code, "msg": err.Error()})
}

// BadRequest bad request error
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, err)
}

// NotFoundRequest not found request error
func NotFoundRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, err)
}
