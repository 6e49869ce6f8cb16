package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatID renders a primary key as the opaque string used by the food model.
func FormatID(id uint) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses an opaque identifier produced by FormatID.
func ParseID(value string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid identifier %q", value)
	}
	return uint(parsed), nil
}

func formatOptionalID(id *uint) string {
	if id == nil {
		return ""
	}
	return FormatID(*id)
}

func optionalString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
