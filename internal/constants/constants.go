package constants

const (
	// ContextKeyUserID is the gin context and session key holding the authenticated user ID
	ContextKeyUserID = "user_id"

	// ContextKeyMeeting holds the meeting loaded by RequireMeetingAccess
	ContextKeyMeeting = "meeting"

	SessionName = "workspace_session"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const (
	// MaxAIGeneratedItems caps how many AI suggestions are returned per request
	MaxAIGeneratedItems = 20

	DefaultAvatarCacheSize = 512

	DefaultOverdueCron = "0 * * * *"
)
