// Package permissions decides, per request, whether a principal may perform
// an action on the user resource.
package permissions

import "errors"

// Action names a user-resource operation.
type Action string

const (
	ActionList     Action = "list"
	ActionRetrieve Action = "retrieve"
	ActionUpdate   Action = "update"
	ActionCreate   Action = "create"
	ActionLogout   Action = "logout"
)

var (
	// ErrUnauthenticated means the action needs a caller identity and none was given.
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	// ErrForbidden means the caller is known but lacks permission.
	ErrForbidden = errors.New("permission denied")
)

// Principal is the authenticated caller. A nil *Principal is an anonymous caller.
type Principal struct {
	UserID   int64
	Username string
	IsStaff  bool
}

// Check applies the user-resource policy. ownerID is the profile owner for
// object-level actions and is ignored otherwise.
func Check(p *Principal, action Action, ownerID int64) error {
	if p != nil && p.IsStaff {
		return nil
	}
	switch action {
	case ActionCreate:
		return nil
	case ActionList:
		if p == nil {
			return ErrUnauthenticated
		}
		return ErrForbidden
	case ActionRetrieve, ActionUpdate:
		if p == nil {
			return ErrUnauthenticated
		}
		if p.UserID != ownerID {
			return ErrForbidden
		}
		return nil
	default:
		if p == nil {
			return ErrUnauthenticated
		}
		return nil
	}
}
