// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package federation mints actor endpoints and key pairs, and queues outbound
// activities for delivery to remote instances.
package federation

import (
	"github.com/oklog/ulid/v2"
)

// Endpoints mints the public URLs of local actors and objects.
type Endpoints struct {
	hostname string
	tls      bool
}

// NewEndpoints returns an Endpoints for hostname.
func NewEndpoints(hostname string, tls bool) Endpoints {
	return Endpoints{hostname: hostname, tls: tls}
}

// Protocol returns "https" or "http".
func (e Endpoints) Protocol() string {
	if e.tls {
		return "https"
	}
	return "http"
}

// Base returns the instance origin.
func (e Endpoints) Base() string {
	return e.Protocol() + "://" + e.hostname
}

// PersonActorID returns the actor URL of a local person.
func (e Endpoints) PersonActorID(name string) string {
	return e.Base() + "/u/" + name
}

// CommunityActorID returns the actor URL of a local community.
func (e Endpoints) CommunityActorID(name string) string {
	return e.Base() + "/c/" + name
}

// PrivateMessageID returns the object URL of a private message.
func (e Endpoints) PrivateMessageID(id ulid.ULID) string {
	return e.Base() + "/private_message/" + id.String()
}

// SharedInboxURL returns the instance-wide inbox.
func (e Endpoints) SharedInboxURL() string {
	return e.Base() + "/inbox"
}

// PasswordChangeURL returns the link mailed for a password reset.
func (e Endpoints) PasswordChangeURL(token string) string {
	return e.Base() + "/password_change/" + token
}

// InboxURL returns the inbox of an actor.
func InboxURL(actorID string) string {
	return actorID + "/inbox"
}

// FollowersURL returns the followers collection of an actor.
func FollowersURL(actorID string) string {
	return actorID + "/followers"
}
