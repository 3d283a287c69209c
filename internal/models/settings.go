package models

import "time"

// AppSettings - notification and display configuration, stored as a single document
type AppSettings struct {
	EmailNotifications bool         `json:"emailNotifications" bson:"emailNotifications"`
	InstantAlerts      bool         `json:"instantAlerts" bson:"instantAlerts"`
	DailyDigest        bool         `json:"dailyDigest" bson:"dailyDigest"`
	NotificationEmail  string       `json:"notificationEmail" bson:"notificationEmail"`
	CCEmail            string       `json:"ccEmail" bson:"ccEmail"`
	StatusLabels       StatusLabels `json:"statusLabels" bson:"statusLabels"`
	LastDigestAt       *time.Time   `json:"lastDigestAt,omitempty" bson:"lastDigestAt,omitempty"`
	UpdatedAt          time.Time    `json:"updatedAt" bson:"updatedAt"`
}

type StatusLabels struct {
	New      string `json:"new" bson:"new"`
	Replied  string `json:"replied" bson:"replied"`
	Archived string `json:"archived" bson:"archived"`
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings(notificationEmail string) AppSettings {
	return AppSettings{
		EmailNotifications: true,
		InstantAlerts:      false,
		DailyDigest:        true,
		NotificationEmail:  notificationEmail,
		StatusLabels: StatusLabels{
			New:      "New",
			Replied:  "Replied",
			Archived: "Archived",
		},
	}
}

// UpdateSettingsRequest is a partial update; nil fields are left untouched
type UpdateSettingsRequest struct {
	EmailNotifications *bool         `json:"emailNotifications"`
	InstantAlerts      *bool         `json:"instantAlerts"`
	DailyDigest        *bool         `json:"dailyDigest"`
	NotificationEmail  *string       `json:"notificationEmail" binding:"omitempty,email"`
	CCEmail            *string       `json:"ccEmail"`
	StatusLabels       *StatusLabels `json:"statusLabels"`
}

// Apply merges the non-nil fields of req into s.
func (req UpdateSettingsRequest) Apply(s AppSettings) AppSettings {
	if req.EmailNotifications != nil {
		s.EmailNotifications = *req.EmailNotifications
	}
	if req.InstantAlerts != nil {
		s.InstantAlerts = *req.InstantAlerts
	}
	if req.DailyDigest != nil {
		s.DailyDigest = *req.DailyDigest
	}
	if req.NotificationEmail != nil {
		s.NotificationEmail = *req.NotificationEmail
	}
	if req.CCEmail != nil {
		s.CCEmail = *req.CCEmail
	}
	if req.StatusLabels != nil {
		if req.StatusLabels.New != "" {
			s.StatusLabels.New = req.StatusLabels.New
		}
		if req.StatusLabels.Replied != "" {
			s.StatusLabels.Replied = req.StatusLabels.Replied
		}
		if req.StatusLabels.Archived != "" {
			s.StatusLabels.Archived = req.StatusLabels.Archived
		}
	}
	return s
}
