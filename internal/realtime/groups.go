package realtime

import "fmt"

// NotificationGroup is the single global group every identified session
// joins; system-wide notifications are published here.
const NotificationGroup = "notification"

// EventChatGroup names the broadcast group of one event's chat room.
func EventChatGroup(eventID int) string {
	return fmt.Sprintf("event_%d_chat", eventID)
}

// UserGroup names a user's private group, spanning all of their live
// sessions. Directives and personal notifications are addressed here.
func UserGroup(userID int) string {
	return fmt.Sprintf("user_%d", userID)
}
