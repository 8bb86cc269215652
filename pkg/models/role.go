package models

const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
	RoleUser   = "user"
)

var Roles = []string{RoleAdmin, RoleAuthor, RoleUser}

const (
	LoginTypeCredentials = "credentials"
	LoginTypeGoogle      = "google"
	LoginTypeGithub      = "github"
)

var LoginTypes = []string{LoginTypeCredentials, LoginTypeGoogle, LoginTypeGithub}

func IsValidRole(role string) bool {
	return contains(Roles, role)
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
