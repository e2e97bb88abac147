package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatFolio(t *testing.T) {
	pattern := regexp.MustCompile(`^TK\d{4,}$`)
	cases := map[int64]string{
		1:     "TK0001",
		42:    "TK0042",
		9999:  "TK9999",
		10000: "TK10000",
	}
	for seq, want := range cases {
		got := FormatFolio(seq)
		assert.Equal(t, want, got)
		assert.Regexp(t, pattern, got)
	}
}

func TestParseTicketStatus(t *testing.T) {
	for _, s := range TicketStatuses {
		got, ok := ParseTicketStatus(string(s))
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}

	for _, raw := range []string{"", "pendiente", "CERRADO", "OPEN"} {
		_, ok := ParseTicketStatus(raw)
		assert.False(t, ok, raw)
	}
}

func TestElapsedDays(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, ElapsedDays(created, created))
	assert.Equal(t, 0, ElapsedDays(created, created.Add(23*time.Hour+59*time.Minute)))
	assert.Equal(t, 1, ElapsedDays(created, created.Add(24*time.Hour)))
	assert.Equal(t, 2, ElapsedDays(created, created.Add(71*time.Hour)))
	assert.Equal(t, 0, ElapsedDays(created, created.Add(-time.Hour)))

	ticket := Ticket{CreatedAt: created}
	now := created.Add(10*24*time.Hour + time.Minute)
	assert.Equal(t, ticket.ElapsedDays(now), ticket.ElapsedDays(now))
	assert.Equal(t, 10, ticket.ElapsedDays(now))
}

func TestStatusDisplayName(t *testing.T) {
	assert.Equal(t, "En Proceso", TicketStatusInProgress.DisplayName())
	assert.Equal(t, "Cancelado", TicketStatusCancelled.DisplayName())
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, r)

	r, ok = ParseRole(" NORMAL ")
	assert.True(t, ok)
	assert.Equal(t, RoleNormal, r)

	_, ok = ParseRole("SUPERUSER")
	assert.False(t, ok)

	var nobody *Identity
	assert.False(t, nobody.IsAdmin())
	assert.False(t, nobody.IsNormal())
}
