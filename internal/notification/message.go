package notification

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"trustmrr/internal/domain"
)

// Kind identifies a notification template.
type Kind string

const (
	KindAdConfirmation   Kind = "ad.confirmation"
	KindAdLive           Kind = "ad.live"
	KindAdExpiryReminder Kind = "ad.expiry_reminder"
)

const (
	DefaultFrom       = "noreply@trustmrr.com"
	DefaultAdminEmail = "admin@trustmrr.com"

	// ExpiryReminderDays is how many days before the end date the reminder goes out.
	ExpiryReminderDays = 2
)

// Message is one outbound email.
type Message struct {
	Kind      Kind      `json:"kind"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Cc        []string  `json:"cc,omitempty"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	AdID      int64     `json:"ad_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Templates renders ad notifications.
type Templates struct {
	From       string
	AdminEmail string
	now        func() time.Time
}

func NewTemplates(from, adminEmail string) *Templates {
	if from == "" {
		from = DefaultFrom
	}
	if adminEmail == "" {
		adminEmail = DefaultAdminEmail
	}
	return &Templates{From: from, AdminEmail: adminEmail, now: time.Now}
}

func (t *Templates) base(kind Kind, ad *domain.Advertisement, owner *domain.User) Message {
	return Message{
		Kind:      kind,
		From:      t.From,
		To:        owner.Email,
		AdID:      ad.ID,
		UserID:    owner.ID,
		CreatedAt: t.now().UTC(),
	}
}

func (t *Templates) Confirmation(ad *domain.Advertisement, owner *domain.User) Message {
	msg := t.base(KindAdConfirmation, ad, owner)
	msg.Cc = []string{t.AdminEmail}
	msg.Subject = fmt.Sprintf("Your Ad on TrustMRR is Confirmed! (Slot: %s)", ad.SlotID)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", owner.Username)
	b.WriteString("Great news! Your advertisement has been successfully booked on TrustMRR.\n\n")
	b.WriteString("Booking Details:\n")
	fmt.Fprintf(&b, "  Ad Title: %s\n", ad.Title)
	fmt.Fprintf(&b, "  Slot Position: %s (%s)\n", ad.SlotID, ad.SlotID.Label())
	fmt.Fprintf(&b, "  Start Date: %s\n", longDate(ad.StartDate))
	fmt.Fprintf(&b, "  End Date: %s\n", longDate(ad.EndDate))
	fmt.Fprintf(&b, "  Amount Paid: ₹%s\n", formatAmount(ad.AmountPaid))
	fmt.Fprintf(&b, "  Payment ID: %s\n\n", ad.PaymentID)
	fmt.Fprintf(&b, "Your ad will go LIVE on %s at 12:00 AM IST.\n", longDate(ad.StartDate))
	fmt.Fprintf(&b, "We'll let you know when it goes live and remind you %d days before it expires.\n\n", ExpiryReminderDays)
	b.WriteString("Track clicks and impressions on your dashboard.\n\n")
	b.WriteString("Best regards,\nTrustMRR Team\n")
	msg.Body = b.String()
	return msg
}

func (t *Templates) Live(ad *domain.Advertisement, owner *domain.User, today time.Time) Message {
	msg := t.base(KindAdLive, ad, owner)
	msg.Subject = "Your Ad is Now LIVE on TrustMRR!"

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", owner.Username)
	fmt.Fprintf(&b, "Your advertisement %q is now LIVE and visible to all TrustMRR visitors!\n\n", ad.Title)
	fmt.Fprintf(&b, "  Slot: %s\n", ad.SlotID)
	fmt.Fprintf(&b, "  Days remaining: %d\n", ad.DaysRemaining(today))
	fmt.Fprintf(&b, "  Target: %s\n\n", ad.TargetURL)
	b.WriteString("Log in to see live click-through rates and impressions.\n\n")
	b.WriteString("Best regards,\nTrustMRR Team\n")
	msg.Body = b.String()
	return msg
}

func (t *Templates) ExpiryReminder(ad *domain.Advertisement, owner *domain.User, daysRemaining int) Message {
	msg := t.base(KindAdExpiryReminder, ad, owner)
	msg.Subject = fmt.Sprintf("Your TrustMRR Ad Expires in %d Days", daysRemaining)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", owner.Username)
	fmt.Fprintf(&b, "Your advertisement %q will expire soon.\n\n", ad.Title)
	fmt.Fprintf(&b, "  Time Remaining: %d days\n", daysRemaining)
	fmt.Fprintf(&b, "  Expiry Date: %s\n\n", longDate(ad.EndDate))
	b.WriteString("Want to keep your ad running? Book additional weeks from your dashboard.\n\n")
	b.WriteString("Best regards,\nTrustMRR Team\n")
	msg.Body = b.String()
	return msg
}

func longDate(t time.Time) string {
	return t.Format("January 02, 2006")
}

// formatAmount renders 123456.5 as "123,456.50".
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}
