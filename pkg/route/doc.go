// Package route maps request paths to "Controller/action" targets using an
// ordered table of regular-expression rules.
//
// Each rule pairs a pattern with targets keyed by verb. The "*" key serves
// any HTTP verb and the "cli" key is reachable only from the command line.
// Capture groups of the pattern are referenced in targets as $1, $2, ...
//
//	table, err := route.New([]route.Rule{
//	    {Pattern: "/", Targets: map[string]string{"*": "Hello/index"}},
//	    {Pattern: "news/([0-9])", Targets: map[string]string{"*": "Hello/showNews/$1"}},
//	    {Pattern: "add", Targets: map[string]string{
//	        "get":    "Hello/addNews",
//	        "post":   "Hello/insertNews",
//	        "delete": "Hello/deleteNews",
//	    }},
//	    {Pattern: "cliTest/(.*)", Targets: map[string]string{"cli": "Hello/cli/$1"}},
//	})
//
//	t, err := table.Match("GET", "/news/3")
//	// t.Controller == "Hello", t.Action == "showNews", t.Args == []string{"3"}
//
// Rules are tried in order and the first match wins. Paths that match no
// rule fall back to the default rule, which reads the path itself as
// "controller/action/arg...".
//
// Tables can also be loaded from YAML with LoadYAML or LoadFile:
//
//	default_controller: Index
//	default_action: index
//	routes:
//	  /: Hello/index
//	  news/([0-9]): Hello/showNews/$1
//	  add:
//	    get: Hello/addNews
//	    post: Hello/insertNews
//	  cliTest/(.*):
//	    cli: Hello/cli/$1
//
// The "*" verb must be quoted in YAML.
package route
