package warranty

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"repairdesk/models"
)

// Intervals are the days-before-expiry thresholds that trigger a reminder.
var Intervals = []int{60, 30, 15, 3}

var spokenInterval = map[int]string{
	60: "2 months",
	30: "1 month",
	15: "15 days",
	3:  "3 days",
}

func timeMessage(days int) string {
	if s, ok := spokenInterval[days]; ok {
		return s
	}
	return fmt.Sprintf("%d days", days)
}

var emailTemplate = template.Must(template.New("warranty").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #eee;">
  <h2 style="color: #333; text-align: center;">Warranty Expiration Notice</h2>
  <p>Your warranty for the following product will expire in <strong>{{.When}}</strong>:</p>
  <div style="background-color: #f7f7f7; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <p><strong>Product:</strong> {{.W.ModelName}}</p>
    <p><strong>Model Number:</strong> {{.W.ModelNumber}}</p>
    <p><strong>Company:</strong> {{.W.Company}}</p>
    <p><strong>Purchase Date:</strong> {{.Purchased}}</p>
    <p><strong>Warranty Expiration:</strong> {{.Expires}}</p>
  </div>
  <p>If you need to extend your warranty or arrange for service before it expires, please contact the manufacturer.</p>
  <p style="margin-top: 30px; font-size: 12px; color: #777; text-align: center;">This is an automated message. Please do not reply.</p>
</div>`))

// daysUntilExpiry counts whole days from the start of today to the expiry instant.
func daysUntilExpiry(w models.Warranty, startOfToday time.Time) int {
	return int(w.ExpiresAt().Sub(startOfToday).Hours() / 24)
}

// dueInterval returns the threshold a warranty sits on today, if any.
func dueInterval(w models.Warranty, startOfToday time.Time) (int, bool) {
	days := daysUntilExpiry(w, startOfToday)
	for _, i := range Intervals {
		if i == days {
			return i, true
		}
	}
	return 0, false
}

func render(w models.Warranty, days int) (Reminder, error) {
	expires := w.ExpiresAt().Format("January 2, 2006")
	when := timeMessage(days)

	var html strings.Builder
	err := emailTemplate.Execute(&html, map[string]any{
		"W":         w,
		"When":      when,
		"Purchased": w.PurchaseDate.Format("January 2, 2006"),
		"Expires":   expires,
	})
	if err != nil {
		return Reminder{}, fmt.Errorf("rendering warranty email: %w", err)
	}

	return Reminder{
		Warranty: w,
		Days:     days,
		Subject:  fmt.Sprintf("Warranty Expiration Notice: Your %s warranty expires in %s", w.ModelName, when),
		HTML:     html.String(),
		Text: fmt.Sprintf("Your %s (%s) warranty expires in %d days (%s).",
			w.ModelName, w.ModelNumber, days, expires),
	}, nil
}
