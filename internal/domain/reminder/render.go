// internal/domain/reminder/render.go
package reminder

import (
	"fmt"
	"strings"

	"birthday_reminder/internal/domain/birthday"
)

// Render formats an occurrence as a one-line reminder, e.g.
// "Ada (34) in 5 days (2024-12-10)".
func Render(occ birthday.Occurrence) string {
	var b strings.Builder
	b.WriteString(occ.Entry.Name)
	if occ.HasAge() {
		fmt.Fprintf(&b, " (%d)", occ.Age)
	}

	switch days := occ.DaysUntil; {
	case days == 0:
		b.WriteString(" today")
	case days == 1:
		b.WriteString(" tomorrow")
	default:
		fmt.Fprintf(&b, " in %d days", days)
		if days >= 3 {
			fmt.Fprintf(&b, " (%s)", occ.Date)
		}
	}
	return b.String()
}
