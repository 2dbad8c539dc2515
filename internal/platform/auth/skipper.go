package auth

// publicPaths bypass the session gate: health and metrics endpoints and the auth
// entry points themselves.
var publicPaths = map[string]bool{
	"/health":       true,
	"/health/db":    true,
	"/metrics":      true,
	"/auth/signup":  true,
	"/auth/signin":  true,
	"/auth/signout": true,
	"/auth/session": true,
}

// IsPublicPath reports whether the route pattern skips the session gate.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
