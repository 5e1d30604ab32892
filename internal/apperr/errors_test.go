package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 200},
		{"validation", Invalid("budget", "must be >= 0"), 400},
		{"wrapped validation", fmt.Errorf("create: %w", Invalid("name", "required")), 400},
		{"not found", NotFound("project"), 404},
		{"conflict", Conflict("milestone already paid"), 409},
		{"forbidden", ErrForbidden, 403},
		{"other", errors.New("db down"), 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Status(tc.err))
		})
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "project not found", NotFound("project").Error())
	assert.Equal(t, "conflict: milestone already paid", Conflict("milestone already paid").Error())
	assert.Equal(t, "budget: must be >= 0", Invalid("budget", "must be >= %d", 0).Error())
	assert.Equal(t, "budget", Field(Invalid("budget", "x")))
	assert.Equal(t, "", Field(ErrConflict))
}
