package domain

type ctxKey string

const (
	RequesterIdCtxKey   ctxKey = "i18n-requesterId"
	RequesterUserCtxKey ctxKey = "i18n-requesterUser"
)

const (
	// DefaultGroup is the export bucket for translations without a group.
	DefaultGroup = "default"

	DefaultPerPage = 10
)
