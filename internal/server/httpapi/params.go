package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/defcomm/internal/common"
)

// pathID reads a positive integer path value.
func pathID(r *http.Request, name, message string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, common.NewError(common.ErrorValidation, message)
	}
	return id, nil
}

// queryInt returns 0 when the parameter is absent, so the service default
// applies. A present value must be an integer within [lo, hi].
func queryInt(r *http.Request, name string, lo, hi int, message string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, invalidField(name, message)
	}
	return v, nil
}
