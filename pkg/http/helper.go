package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"washbook/pkg/config"
	apperrors "washbook/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	return config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset), nil
}

// RequireQuery returns the named query parameters, failing on the first missing one.
func RequireQuery(r *http.Request, names ...string) (map[string]string, error) {
	query := r.URL.Query()
	values := make(map[string]string, len(names))
	for _, name := range names {
		v := query.Get(name)
		if v == "" {
			return nil, apperrors.InvalidInput(fmt.Sprintf("'%s' query parameter is required", name))
		}
		values[name] = v
	}
	return values, nil
}

// ParseDate validates a YYYY-MM-DD calendar date. The date stays a plain
// calendar value; it is resolved to instants in the provider's time zone later.
func ParseDate(name, value string) (string, error) {
	if _, err := time.Parse(config.DateLayout, value); err != nil {
		return "", apperrors.InvalidInput(fmt.Sprintf("invalid %s, must be YYYY-MM-DD", name))
	}
	return value, nil
}

func DecodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return apperrors.PayloadTooLarge(maxBytesErr.Limit)
		}
		return apperrors.InvalidInput("Invalid request body")
	}
	return nil
}
