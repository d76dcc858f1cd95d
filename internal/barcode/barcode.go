// Package barcode generates identifiers for items created without a
// physical barcode.
package barcode

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generate produces a barcode of the form YYYYMMDD-HHMMSS-XXXXXXXX where the
// suffix is the first 8 hex characters of a random UUID. The timestamp prefix
// keeps generated codes roughly sortable by creation time; the random suffix
// keeps them unique within a second.
func Generate() string {
	now := time.Now().UTC()
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%s", now.Format("20060102"), now.Format("150405"), suffix)
}
