// Package hcl loads manifest files written in HCL.
//
// A manifest file has optional top-level attributes and one `artifact` block
// per expected file:
//
//	name      = "WASM"
//	size_unit = "mb"
//	directory = "bin/wasm"
//
//	artifact "client.js" {
//	  role = "loader"
//	  dir  = "bin/wasm/client"
//	}
//
// Expressions may reference the variables `os`, `variant` and `root`, so one
// file can describe every native platform:
//
//	directory = "bin/${os}/${variant}/dll"
package hcl
