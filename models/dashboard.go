package models

// Dashboard is the landing-page aggregate for the signed-in user.
type Dashboard struct {
	Today            *Attendance        `json:"today"`
	Month            *AttendanceSummary `json:"month"`
	MyPending        PendingCounts      `json:"my_pending"`
	AwaitingMe       PendingCounts      `json:"awaiting_me"`
	UnreadCount      int                `json:"unread_notifications"`
	LeaveBalance     []LeaveBalance     `json:"leave_balance"`
	TeamSize         int                `json:"team_size"`
	CheckoutReminder bool               `json:"checkout_reminder"`
}
