package enum

import "strings"

// LogoutPolicy decides what happens to an account's cart when its user signs out.
type LogoutPolicy string

const (
	// LogoutPolicyKeep leaves the account cart in place for the next sign-in.
	LogoutPolicyKeep LogoutPolicy = "keep"
	// LogoutPolicyClear empties the account cart.
	LogoutPolicyClear LogoutPolicy = "clear"
)

func ParseLogoutPolicy(s string) LogoutPolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(LogoutPolicyClear)) {
		return LogoutPolicyClear
	}
	return LogoutPolicyKeep
}
