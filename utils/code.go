package utils

import (
	"crypto/rand"
	"fmt"
	"time"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateComplaintCode generates a human-readable complaint code.
// Format: COM-YYYYMMDD-XXXXXX with six random uppercase alphanumerics.
// The code is advisory/display-only, not the primary key; uniqueness is by
// construction probability, not enforced.
func GenerateComplaintCode(now time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// time-derived suffix rather than aborting complaint creation.
		return fmt.Sprintf("COM-%s-%06d", now.UTC().Format("20060102"), now.UnixNano()%1000000)
	}
	for i, b := range buf {
		buf[i] = codeCharset[int(b)%len(codeCharset)]
	}
	return fmt.Sprintf("COM-%s-%s", now.UTC().Format("20060102"), string(buf))
}
