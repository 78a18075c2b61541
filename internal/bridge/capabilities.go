package bridge

import "fmt"

// Capabilities is the permission state a platform reports for app blocking.
// It is a closed set: UsageAccess, Authorization or Unsupported. The block
// coordinator only ever asks BlockingAllowed, so its logic does not depend on
// which platform produced the value.
type Capabilities interface {
	BlockingAllowed() bool
	String() string
	isCapabilities()
}

// UsageAccess is the two-permission model: the usage-stats grant to see the
// foreground app and the accessibility service to intercept it.
type UsageAccess struct {
	UsageStats    bool `json:"usage_stats"`
	Accessibility bool `json:"accessibility"`
}

func (c UsageAccess) BlockingAllowed() bool {
	return c.UsageStats && c.Accessibility
}

func (c UsageAccess) String() string {
	return fmt.Sprintf("usage-access(usage_stats=%t, accessibility=%t)", c.UsageStats, c.Accessibility)
}

func (UsageAccess) isCapabilities() {}

// AuthorizationStatus is a single system-wide authorization answer.
type AuthorizationStatus string

const (
	AuthorizationNotDetermined AuthorizationStatus = "not_determined"
	AuthorizationDenied        AuthorizationStatus = "denied"
	AuthorizationApproved      AuthorizationStatus = "approved"
)

// Authorization is the single-status permission model.
type Authorization struct {
	Status AuthorizationStatus `json:"status"`
}

func (c Authorization) BlockingAllowed() bool {
	return c.Status == AuthorizationApproved
}

func (c Authorization) String() string {
	return fmt.Sprintf("authorization(%s)", c.Status)
}

func (Authorization) isCapabilities() {}

// Unsupported is reported by platforms that cannot block apps at all.
type Unsupported struct {
	Reason string `json:"reason"`
}

func (Unsupported) BlockingAllowed() bool {
	return false
}

func (c Unsupported) String() string {
	if c.Reason == "" {
		return "unsupported"
	}
	return "unsupported(" + c.Reason + ")"
}

func (Unsupported) isCapabilities() {}
