package domain

import "time"

// TimestampLayout is the format user activity timestamps are stored in.
const TimestampLayout = "2006-01-02 15:04:05"

type UserRecord struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	Timestamp string `json:"timestamp"`
}

type Summary struct {
	Total int
	Today int
}

// Summarize counts all records plus those whose stored date matches the
// current date in loc. Records with unparsable timestamps are skipped.
func Summarize(records []UserRecord, now time.Time, loc *time.Location) Summary {
	s := Summary{Total: len(records)}
	today := now.In(loc).Format("2006-01-02")
	for _, r := range records {
		ts, err := time.ParseInLocation(TimestampLayout, r.Timestamp, loc)
		if err != nil {
			continue
		}
		if ts.Format("2006-01-02") == today {
			s.Today++
		}
	}
	return s
}
