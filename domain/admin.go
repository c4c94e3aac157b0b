package domain

// Admin is an entry of the remote admin registry.
type Admin struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt Timestamp `json:"createdAt"`
}

// ActivityLog records an administrative action.
type ActivityLog struct {
	ID        int64     `json:"id"`
	AdminID   int64     `json:"adminId"`
	AdminName string    `json:"adminName"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Timestamp Timestamp `json:"timestamp"`
}
