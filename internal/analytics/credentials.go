package analytics

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned when the username is empty.
var ErrMissingCredentials = errors.New("missing credentials")

// Credentials is the username/secret pair used for HTTP basic auth.
type Credentials struct {
	Username string
	Password string
}

// Validate checks that the credentials can be turned into a token.
// An empty password is allowed.
func (c Credentials) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("%w: username is empty", ErrMissingCredentials)
	}
	return nil
}

// Token returns base64(username:password).
func (c Credentials) Token() string {
	return base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
}

// Header returns the value for the Authorization header.
func (c Credentials) Header() string {
	return "Basic " + c.Token()
}

// String hides the password.
func (c Credentials) String() string {
	return fmt.Sprintf("BasicAuth(username: %s)", c.Username)
}
