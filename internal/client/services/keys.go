package services

// Local store keys.
const (
	KeyDeviceID               = "cal_device_id"
	KeySessionToken           = "cal_session_token"
	KeyActiveUser             = "cal_active_user"
	KeySavedGuest             = "cal_saved_guest_identity"
	KeyReminders              = "cal_reminders_v2"
	KeyNotificationPermission = "cal_notification_permission"
	KeyEventsCache            = "cal_events_cache"
)
