package model

// User-visible texts delivered with errorMsg
const (
	MsgCooldownActive  = "Please wait before inviting this player again."
	MsgPlayerBusy      = "Player is busy."
	MsgInviteDeclined  = "Invite declined."
	MsgInviteCancelled = "Invite cancelled."
)

// Round outcome texts delivered with healthUpdate
const (
	MsgRoundDraw    = "Draw!"
	MsgRoundResumed = "Match resumed."
)
