package models

type ModerationAction string

const (
	ModerationApprove ModerationAction = "approve"
	ModerationDelete  ModerationAction = "delete"
)

type ModerateRequest struct {
	Action ModerationAction `json:"action" form:"action" validate:"required"`
}
