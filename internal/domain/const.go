package domain

// Context keys set by the auth middleware.
const (
	RequesterIdCtxKey       = "dl-requesterId"
	RequesterUsernameCtxKey = "dl-requesterUsername"
)

// Fallback display names when an identity lookup fails or the name fields
// are blank. Kept verbatim for compatibility with the existing frontend.
const (
	UnknownUserName   = "Usuario desconocido"
	UnknownAuthorName = "Autor desconocido"
)

// Display budgets of the activity timeline.
const (
	ActivityLimit        = 15
	ActivityCommentLimit = 10
)
