package domain

// Role - роль пользователя на площадке.
type Role string

const (
	RoleStudent  Role = "student"
	RoleLandlord Role = "landlord"
)

// Valid сообщает, известна ли роль.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleLandlord
}

// User - запись о текущем пользователе, как ее отдает /api/users/me.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Phone string `json:"phone,omitempty"`
}

// IsLandlord - может ли пользователь управлять своими объявлениями.
func (u User) IsLandlord() bool {
	return u.Role == RoleLandlord
}

// Session - связка bearer-токена и пользователя.
// User заполнен тогда и только тогда, когда есть токен.
type Session struct {
	Token string `json:"-"`
	User  User   `json:"user"`
}

// Credentials - данные формы входа.
type Credentials struct {
	Email    string
	Password string
}

// Registration - данные формы регистрации.
type Registration struct {
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
	Role            Role
}
