package models

import "time"

// LeaveType enumerates categories of leave.
type LeaveType string

const (
	LeavePaid  LeaveType = "PAID"
	LeaveSick  LeaveType = "SICK"
	LeaveOther LeaveType = "OTHER"
)

// Valid reports whether the leave type is recognised.
func (t LeaveType) Valid() bool {
	switch t {
	case LeavePaid, LeaveSick, LeaveOther:
		return true
	}
	return false
}

// LeaveStatus enumerates the review states of a leave request.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "PENDING"
	LeaveApproved LeaveStatus = "APPROVED"
	LeaveRejected LeaveStatus = "REJECTED"
)

// LeaveRequest records a request for time off. Only PENDING requests may
// transition; ReviewedBy and ReviewedAt are set exactly once on review.
type LeaveRequest struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `json:"user,omitempty"`

	Type      LeaveType   `gorm:"type:varchar(8);not null" json:"type"`
	StartDate time.Time   `gorm:"not null" json:"start_date"`
	EndDate   time.Time   `gorm:"not null" json:"end_date"`
	Reason    string      `json:"reason"`
	Status    LeaveStatus `gorm:"type:varchar(10);not null;default:PENDING;index" json:"status"`

	ReviewedBy *string    `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`
}
