package models

import "encoding/json"

// Gender values accepted by the backend profile endpoint.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// User is the profile of the signed-in account as returned by the backend.
// Optional attributes are pointers so that "not set" survives a round trip
// through local storage.
type User struct {
	// UserID is the server-assigned identifier.
	UserID string `json:"user_id"`
	// Username is the login name.
	Username string `json:"username"`
	// UserType is "registered" for regular accounts.
	UserType string `json:"user_type"`

	Phone             *string  `json:"phone,omitempty"`
	Gender            *string  `json:"gender,omitempty"`
	Birthday          *string  `json:"birthday,omitempty"`
	Bio               *string  `json:"bio,omitempty"`
	TravelPreferences []string `json:"travel_preferences,omitempty"`
	AvatarURL         *string  `json:"avatar_url,omitempty"`
}

// UserPatch is a partial profile update. A nil field means "leave as is".
// It doubles as the request body of PUT /api/v1/auth/me.
type UserPatch struct {
	Username          *string  `json:"username,omitempty"`
	Phone             *string  `json:"phone,omitempty"`
	Gender            *string  `json:"gender,omitempty"`
	Birthday          *string  `json:"birthday,omitempty"`
	Bio               *string  `json:"bio,omitempty"`
	TravelPreferences []string `json:"travel_preferences,omitempty"`
	AvatarURL         *string  `json:"avatar_url,omitempty"`
}

// MarshalJSON keeps an empty, non-nil TravelPreferences on the wire as []
// so that the server clears the list. A nil slice is still omitted.
func (p UserPatch) MarshalJSON() ([]byte, error) {
	type wire UserPatch
	out := struct {
		wire
		TravelPreferences *[]string `json:"travel_preferences,omitempty"`
	}{wire: wire(p)}
	if p.TravelPreferences != nil {
		prefs := p.TravelPreferences
		out.TravelPreferences = &prefs
	}
	return json.Marshal(out)
}

// IsEmpty reports whether the patch carries no fields.
func (p UserPatch) IsEmpty() bool {
	return p.Username == nil && p.Phone == nil && p.Gender == nil &&
		p.Birthday == nil && p.Bio == nil && p.TravelPreferences == nil &&
		p.AvatarURL == nil
}

// Apply returns a copy of u with every field present in p overwritten.
// Fields absent from p keep their current value.
func (u User) Apply(p UserPatch) User {
	out := u.Clone()
	if p.Username != nil {
		out.Username = *p.Username
	}
	if p.Phone != nil {
		out.Phone = cloneString(p.Phone)
	}
	if p.Gender != nil {
		out.Gender = cloneString(p.Gender)
	}
	if p.Birthday != nil {
		out.Birthday = cloneString(p.Birthday)
	}
	if p.Bio != nil {
		out.Bio = cloneString(p.Bio)
	}
	if p.TravelPreferences != nil {
		out.TravelPreferences = append([]string{}, p.TravelPreferences...)
	}
	if p.AvatarURL != nil {
		out.AvatarURL = cloneString(p.AvatarURL)
	}
	return out
}

// PatchFrom builds the patch that carries every profile attribute of u.
// It is used to fold a server-returned profile into the local session.
func PatchFrom(u User) UserPatch {
	return UserPatch{
		Username:          cloneString(&u.Username),
		Phone:             cloneString(u.Phone),
		Gender:            cloneString(u.Gender),
		Birthday:          cloneString(u.Birthday),
		Bio:               cloneString(u.Bio),
		TravelPreferences: cloneSlice(u.TravelPreferences),
		AvatarURL:         cloneString(u.AvatarURL),
	}
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	out := u
	out.Phone = cloneString(u.Phone)
	out.Gender = cloneString(u.Gender)
	out.Birthday = cloneString(u.Birthday)
	out.Bio = cloneString(u.Bio)
	out.AvatarURL = cloneString(u.AvatarURL)
	out.TravelPreferences = cloneSlice(u.TravelPreferences)
	return out
}

// ValidGender reports whether g is one of the values the backend accepts.
func ValidGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneSlice(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of POST /api/v1/auth/change-password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// AuthResponse is the session bundle returned by login and register.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// GuestSession is the result of POST /api/v1/auth/guest.
type GuestSession struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// HealthStatus is the result of GET /health.
type HealthStatus struct {
	Status string `json:"status"`
}
