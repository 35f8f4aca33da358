package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateComplaintCode(t *testing.T) {
	now := time.Date(2026, 8, 28, 14, 0, 0, 0, time.UTC)
	code := GenerateComplaintCode(now)
	assert.Regexp(t, `^COM-20260828-[A-Z0-9]{6}$`, code)
}

func TestGenerateComplaintCodeVaries(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[GenerateComplaintCode(now)] = true
	}
	// 50 draws from a 36^6 space colliding down to a handful would mean the
	// random suffix is broken.
	assert.Greater(t, len(seen), 45)
}
