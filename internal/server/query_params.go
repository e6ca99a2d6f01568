package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const asOfLayout = "2006-01-02"

// queryAsOf parses an optional asof=YYYY-MM-DD query param, defaulting to now.
func queryAsOf(c *gin.Context) (time.Time, error) {
	raw := strings.TrimSpace(c.Query("asof"))
	if raw == "" {
		return time.Now().UTC(), nil
	}
	asOf, err := time.Parse(asOfLayout, raw)
	if err != nil {
		return time.Time{}, ErrInvalidRequest
	}
	return asOf, nil
}

// queryMonths parses an optional months=N query param.
func queryMonths(c *gin.Context, def int) (int, error) {
	raw := strings.TrimSpace(c.Query("months"))
	if raw == "" {
		return def, nil
	}
	months, err := strconv.Atoi(raw)
	if err != nil || months <= 0 {
		return 0, ErrInvalidRequest
	}
	return months, nil
}
