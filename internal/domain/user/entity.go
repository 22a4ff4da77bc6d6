package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents a platform subscriber (Telegram user)
type User struct {
	ID               uuid.UUID `db:"id"`
	TelegramID       int64     `db:"telegram_id"`
	TelegramUsername string    `db:"telegram_username"`
	FirstName        string    `db:"first_name"`
	LastName         string    `db:"last_name"`
	LanguageCode     string    `db:"language_code"`
	IsActive         bool      `db:"is_active"`
	IsPremium        bool      `db:"is_premium"`
	Settings         Settings  `db:"settings"` // sqlx handles JSONB automatically
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// Settings contains user preferences for signal delivery.
// This struct is stored as JSONB in PostgreSQL.
type Settings struct {
	NotificationsOn  bool     `json:"notifications_on"`
	Channels         []string `json:"channels"`          // telegram, websocket
	MinConfidence    float64  `json:"min_confidence"`    // drop signals below this
	QuietHoursStart  string   `json:"quiet_hours_start"` // HH:MM, empty disables
	QuietHoursEnd    string   `json:"quiet_hours_end"`   // HH:MM
	Timezone         string   `json:"timezone"`
	DailyDigestTime  string   `json:"daily_digest_time"` // HH:MM
	MaxSubscriptions int      `json:"max_subscriptions"`
}

// DefaultSettings returns default user settings
func DefaultSettings() Settings {
	return Settings{
		NotificationsOn:  true,
		Channels:         []string{"telegram"},
		MinConfidence:    0.5,
		Timezone:         "Asia/Shanghai",
		DailyDigestTime:  "09:00",
		MaxSubscriptions: 10,
	}
}

// WantsChannel reports whether the user accepts delivery on the channel.
func (u *User) WantsChannel(channel string) bool {
	if !u.Settings.NotificationsOn {
		return false
	}
	for _, c := range u.Settings.Channels {
		if c == channel {
			return true
		}
	}
	return false
}

// InQuietHours reports whether now falls inside the user's quiet hours
// window, evaluated in the user's timezone. Windows may cross midnight.
func (u *User) InQuietHours(now time.Time) bool {
	s := u.Settings
	if s.QuietHoursStart == "" || s.QuietHoursEnd == "" {
		return false
	}

	start, err := time.Parse("15:04", s.QuietHoursStart)
	if err != nil {
		return false
	}
	end, err := time.Parse("15:04", s.QuietHoursEnd)
	if err != nil {
		return false
	}

	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)

	cur := local.Hour()*60 + local.Minute()
	from := start.Hour()*60 + start.Minute()
	until := end.Hour()*60 + end.Minute()

	if from <= until {
		return cur >= from && cur < until
	}
	return cur >= from || cur < until
}
