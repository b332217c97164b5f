package merchant

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/shipment-tracking/internal/domain"
	"github.com/google/uuid"
)

// ErrMerchantNotFound is returned when a merchant id does not resolve.
var ErrMerchantNotFound = fmt.Errorf("merchant %w", domain.ErrNotFound)

// Merchant owns shipments. Deleting a merchant removes its shipments and
// their events.
type Merchant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateName rejects empty or whitespace-only names. The name is stored as sent.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.Invalid("name", "is required")
	}
	return nil
}
