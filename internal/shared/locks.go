package shared

import "fmt"

// AssignmentLockKey builds redis keys serializing writes for one
// assignment tuple.
func AssignmentLockKey(userID int64, scopeType string, scopeID int64, kind string) string {
	return fmt.Sprintf("assignment:%d:%s:%d:%s:lock", userID, scopeType, scopeID, kind)
}
