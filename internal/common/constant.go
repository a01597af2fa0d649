package common

// APIKeyHeaderName is the gRPC metadata key carrying the client's API key.
const APIKeyHeaderName = "api_key"

// Row store table names.
const (
	TableAppConfig = "app_config"
	TableAdmins    = "admins"
	TableUsers     = "users"
	TableAuditLogs = "audit_logs"
	TableReminders = "reminders"
	TableEvents    = "events"
)
