package models

// Group is owned by the group-management service; accounts only reads it.
type Group struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	AdminID *int64 `json:"admin_id"`
}

// IsAdmin reports whether userID holds the group's admin slot.
func (g Group) IsAdmin(userID int64) bool {
	return g.AdminID != nil && *g.AdminID == userID
}
