package handlers

import (
	"net/http"
	"strconv"
	"strings"
)

// Actor identifies the caller of a request. Identity is asserted by the
// chat gateway in front of this service via headers; the service trusts
// them as-is.
type Actor struct {
	UserID    int64
	Username  string
	RoleIDs   []int64
	ChannelID int64
}

// actorFromRequest extracts the caller's identity from request headers.
// Missing or malformed headers yield zero values, which the permission
// checks treat as "no identity".
func actorFromRequest(r *http.Request) Actor {
	a := Actor{
		Username: r.Header.Get("X-Username"),
	}
	if v := r.Header.Get("X-User-ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			a.UserID = id
		}
	}
	if v := r.Header.Get("X-Channel-ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			a.ChannelID = id
		}
	}
	for _, p := range strings.Split(r.Header.Get("X-Role-IDs"), ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		a.RoleIDs = append(a.RoleIDs, id)
	}
	return a
}

// requireActor rejects requests that carry no user identity
func requireActor(a Actor) error {
	if a.UserID == 0 {
		return BadRequest("Missing X-User-ID header")
	}
	return nil
}
