// Package hostrouter selects an http.Handler by request host.
//
// kotori uses it to serve several applications from one listener, one per
// domain:
//
//	router := hostrouter.New(hostrouter.Routes{
//	    "admin.example.com": adminApp.Router(),
//	    "*.example.com":     siteApp.Router(),
//	}, fallbackApp.Router())
//
// Exact patterns win over wildcards, and a wildcard matches subdomains at
// any depth. Matching ignores case and port.
package hostrouter
