package models

// Roles understood by the auth layer.
const (
	RoleUser    = "user"
	RoleService = "service"
	RoleAdmin   = "admin"
)

// Identity is the subset of an account the core needs.
type Identity struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Role     string `bson:"role" json:"role"`
	ShopName string `bson:"shopName,omitempty" json:"shopName,omitempty"`
	FCMToken string `bson:"fcmToken,omitempty" json:"-"`
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

func (a Actor) IsShop() bool { return a.Role == RoleService }
