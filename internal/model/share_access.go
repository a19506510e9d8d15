package model

// ShareAccess is one audited ALLOW decision.
type ShareAccess struct {
	ID         string      `json:"id"`
	ShareToken string      `json:"-"`
	Action     AccessLevel `json:"action"`
	ViewNumber int         `json:"view_number"`
	ClientIP   string      `json:"client_ip"`
	UserAgent  string      `json:"user_agent"`
	Ctime      int64       `json:"ctime"`
}
