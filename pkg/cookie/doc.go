// Package cookie reads and writes HTTP cookies with shared attributes.
//
// Plain cookies need no setup. Signed cookies and flash messages need a
// secret of at least 32 bytes, usually from COOKIE_SECRET:
//
//	m, err := cookie.NewFromConfig(cfg.Cookie)
//	if err := m.SetSigned(w, "remember", userID, 86400); err != nil { ... }
//	id, err := m.GetSigned(r, "remember") // ErrBadSig when tampered with
//
// The session manager uses Sign and Verify to protect the session token
// when a secret is configured.
package cookie
