// Package web carries the embedded control page served at /.
package web

import _ "embed"

//go:embed index.html
var IndexPage []byte
