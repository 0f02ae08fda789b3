package domain

// Actor is the authenticated identity a request runs as. The zero value is anonymous.
type Actor struct {
	UserID      int64
	Username    string
	Role        Role
	Permissions Permissions
}

// AnonymousActor represents a request without a session.
var AnonymousActor = Actor{}

// ActorFromUser builds the request identity for a loaded user.
func ActorFromUser(u *User) Actor {
	if u == nil {
		return AnonymousActor
	}
	return Actor{
		UserID:      u.ID,
		Username:    u.Username,
		Role:        u.Role,
		Permissions: u.EffectivePermissions(),
	}
}

// Authenticated reports whether the actor carries a session identity.
func (a Actor) Authenticated() bool {
	return a.UserID != 0
}

// HasRole reports whether the actor holds one of the given roles.
func (a Actor) HasRole(roles ...Role) bool {
	if !a.Authenticated() {
		return false
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Can reports whether the actor is an admin granted the capability.
func (a Actor) Can(c Capability) bool {
	return a.HasRole(RoleAdmin) && a.Permissions.Has(c)
}
