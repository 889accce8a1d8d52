package printtmpl

import "strings"

// Entity types a template can be written for
const (
	EntityMembers            = "members"
	EntityJuniorMembers      = "junior_members"
	EntityVehicles           = "vehicles"
	EntityMeetings           = "meetings"
	EntityEvents             = "events"
	EntityMemberApplications = "member_applications"
)

// EntityTypes is the closed whitelist of entity types, in display order.
var EntityTypes = []string{
	EntityMembers,
	EntityJuniorMembers,
	EntityVehicles,
	EntityMeetings,
	EntityEvents,
	EntityMemberApplications,
}

// IsValidEntityType reports whether entityType is in the whitelist. The
// comparison is exact; "Members" is not a valid entity type.
func IsValidEntityType(entityType string) bool {
	for _, t := range EntityTypes {
		if t == entityType {
			return true
		}
	}
	return false
}

func entityTypeList() string {
	return strings.Join(EntityTypes, ", ")
}
