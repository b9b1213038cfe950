package helpers

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateTicketNumber returns a fresh ticket number. Uniqueness is backed by
// the unique index on tickets.ticket_number.
func GenerateTicketNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "RW-" + raw[:12]
}
