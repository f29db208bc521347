package model

// Account is a discovered account on one platform. Accounts are created
// only from a ProbeResult that confirmed existence; the orchestrator
// enforces this when it promotes probe results.
type Account struct {
	// Platform is the canonical platform name.
	Platform string `json:"platform"`

	// Handle is the confirmed handle.
	Handle string `json:"handle"`

	// ProfileURL is the canonical profile URL, when the platform has one.
	ProfileURL string `json:"profile_url,omitempty"`

	// Probe is the probe result that confirmed this account.
	Probe *ProbeResult `json:"probe,omitempty"`

	// Signature is the behavioral fingerprint, nil until the
	// fingerprinting stage has run (or when no harvester is configured).
	Signature *BehavioralSignature `json:"signature,omitempty"`
}

// NewAccount promotes a confirmed probe result into an Account.
// It returns nil when the probe did not confirm existence, so callers
// can never create an account from a negative or inconclusive probe.
func NewAccount(platform Platform, probe *ProbeResult) *Account {
	if probe == nil || !probe.Exists {
		return nil
	}
	return &Account{
		Platform:   probe.Platform,
		Handle:     probe.Handle,
		ProfileURL: platform.ProfileURL(probe.Handle),
		Probe:      probe,
	}
}

// Key returns the stable "platform/handle" identity of this account.
func (a *Account) Key() string {
	return a.Platform + "/" + a.Handle
}
