package domain

import "encoding/json"

// Roles assigned by the remote API at registration time.
const (
	RoleStudent    = "Student"
	RoleSupervisor = "Supervisor"
	RoleDeanOffice = "Dean Office"
)

// User is the account record returned by GET /api/users/me/.
type User struct {
	ID                 int64  `json:"id"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	IsProfileCompleted bool   `json:"is_profile_completed"`
}

// Profile is the extended profile record. Its shape depends on the role, so
// it is kept as an opaque JSON object.
type Profile map[string]any

// Clone returns a shallow copy so callers cannot mutate cached state.
func (p Profile) Clone() Profile {
	if p == nil {
		return nil
	}
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// JoinRequest is the caller's team join request as reported by
// GET /api/teams/my-join-request/.
type JoinRequest struct {
	ID     int64  `json:"id,omitempty"`
	Team   any    `json:"team,omitempty"`
	Status string `json:"status"`
}

// JoinRequestPending is the status value that marks an open request.
const JoinRequestPending = "pending"

// TeamMembership is the raw body of GET /api/teams/my/. The endpoint returns
// either a team object or a list of teams.
type TeamMembership json.RawMessage

// Present reports whether the body describes at least one team: an object
// carrying an "id" key or a non-empty array.
func (t TeamMembership) Present() bool {
	if len(t) == 0 {
		return false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(t, &obj); err == nil {
		_, ok := obj["id"]
		return ok
	}
	var list []json.RawMessage
	if err := json.Unmarshal(t, &list); err == nil {
		return len(list) > 0
	}
	return false
}
