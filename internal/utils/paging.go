package utils

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidSkip  = errors.New("skip must be a non-negative integer")
	ErrInvalidLimit = errors.New("limit must be a positive integer")
)

type PageLimits struct {
	DefaultLimit int
	MaxLimit     int
}

// ParseSkipLimit reads offset paging query values. Empty values take the
// defaults; limits above MaxLimit are clamped rather than rejected.
func ParseSkipLimit(skipRaw, limitRaw string, limits PageLimits) (skip, limit int, err error) {
	skip = 0
	limit = limits.DefaultLimit

	if s := strings.TrimSpace(skipRaw); s != "" {
		skip, err = strconv.Atoi(s)
		if err != nil || skip < 0 {
			return 0, 0, ErrInvalidSkip
		}
	}

	if l := strings.TrimSpace(limitRaw); l != "" {
		limit, err = strconv.Atoi(l)
		if err != nil || limit < 1 {
			return 0, 0, ErrInvalidLimit
		}
	}

	if limits.MaxLimit > 0 && limit > limits.MaxLimit {
		limit = limits.MaxLimit
	}

	return skip, limit, nil
}

func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
