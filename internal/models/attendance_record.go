package models

import "time"

// AttendanceRecord captures one working day for one user. WorkDate is the
// calendar day in the server's location, normalised to midnight; the unique
// index enforces a single record per user per day.
type AttendanceRecord struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_user_day" json:"user_id"`
	User   *User  `json:"user,omitempty"`

	WorkDate time.Time  `gorm:"not null;uniqueIndex:idx_attendance_user_day" json:"work_date"`
	ClockIn  time.Time  `gorm:"not null" json:"clock_in"`
	ClockOut *time.Time `json:"clock_out"`
	Note     string     `json:"note"`
}
