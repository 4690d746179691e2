package env

import (
	C "github.com/sagernet/sing-connect/constant"
)

type UserAgent struct {
	value string
}

// NewUserAgent appends the library name and version to the application's
// own user agent.
func NewUserAgent(userAgent string) UserAgent {
	libraryTag := "sing-connect/" + C.Version
	if userAgent == "" {
		return UserAgent{libraryTag}
	}
	return UserAgent{userAgent + " " + libraryTag}
}

func (u UserAgent) String() string {
	return u.value
}
