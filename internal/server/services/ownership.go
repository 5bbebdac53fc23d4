package services

import "github.com/dmitrijs2005/civicdesk/internal/common"

// IsOwner reports whether requester created the resource.
func IsOwner(createdBy, requester string) bool {
	return createdBy != "" && createdBy == requester
}

// CheckOwnership is IsOwner as an error: common.ErrForbidden for non-owners.
func CheckOwnership(createdBy, requester string) error {
	if !IsOwner(createdBy, requester) {
		return common.ErrForbidden
	}
	return nil
}
