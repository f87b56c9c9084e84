package browser

import (
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod/lib/proto"

	"gradewatch/pkg/session"
)

// sessionCookieExpiry marks a cookie without expiry in storage-state form
const sessionCookieExpiry = -1

func cookieParams(cookies []session.Cookie) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		param := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		if c.Expires > 0 {
			param.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		if c.SameSite != "" {
			param.SameSite = proto.NetworkCookieSameSite(c.SameSite)
		}
		params = append(params, param)
	}
	return params
}

func fromNetworkCookies(cookies []*proto.NetworkCookie) []session.Cookie {
	out := make([]session.Cookie, 0, len(cookies))
	for _, c := range cookies {
		cookie := session.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  float64(c.Expires),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		}
		if c.Session {
			cookie.Expires = sessionCookieExpiry
		}
		out = append(out, cookie)
	}
	return out
}

// localStorageScript builds a script that seeds local storage for the
// origin being loaded, if the snapshot has entries for it.
func localStorageScript(origins []session.Origin) (string, bool) {
	byOrigin := make(map[string]map[string]string)
	for _, o := range origins {
		if len(o.LocalStorage) == 0 {
			continue
		}
		entries := make(map[string]string, len(o.LocalStorage))
		for _, e := range o.LocalStorage {
			entries[e.Name] = e.Value
		}
		byOrigin[o.Origin] = entries
	}
	if len(byOrigin) == 0 {
		return "", false
	}

	data, err := json.Marshal(byOrigin)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf(`(() => {
	const seed = %s;
	const entries = seed[location.origin];
	if (!entries) return;
	try {
		for (const [k, v] of Object.entries(entries)) {
			if (window.localStorage.getItem(k) === null) window.localStorage.setItem(k, v);
		}
	} catch (e) {}
})();`, data), true
}

// mergeOrigins replaces the entries of origin in restored with entries,
// keeping the other origins in their original order.
func mergeOrigins(restored []session.Origin, origin string, entries [][2]string) []session.Origin {
	current := session.Origin{Origin: origin, LocalStorage: make([]session.StorageEntry, 0, len(entries))}
	for _, e := range entries {
		current.LocalStorage = append(current.LocalStorage, session.StorageEntry{Name: e[0], Value: e[1]})
	}

	out := make([]session.Origin, 0, len(restored)+1)
	replaced := false
	for _, o := range restored {
		if o.Origin == origin {
			out = append(out, current)
			replaced = true
			continue
		}
		out = append(out, o)
	}
	if !replaced && origin != "" && origin != "null" && len(current.LocalStorage) > 0 {
		out = append(out, current)
	}
	return out
}
