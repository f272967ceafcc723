package board

import (
	"fmt"
	"strconv"
	"time"
)

// CreatedAt decodes the creation time Trello embeds in object ids: the
// first 8 hex characters are big-endian Unix seconds.
func CreatedAt(id string) (time.Time, error) {
	if len(id) < 8 {
		return time.Time{}, fmt.Errorf("id %q is shorter than 8 characters", id)
	}
	secs, err := strconv.ParseUint(id[:8], 16, 32)
	if err != nil {
		return time.Time{}, fmt.Errorf("id %q has no timestamp prefix: %w", id, err)
	}
	return time.Unix(int64(secs), 0), nil
}

// TimestampPrefix encodes t the way CreatedAt expects to read it.
func TimestampPrefix(t time.Time) string {
	return fmt.Sprintf("%08x", uint32(t.Unix()))
}
