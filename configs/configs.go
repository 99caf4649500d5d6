// Package configs holds the content files embedded into the binary.
package configs

import _ "embed"

// Dialogue is the Daily Talk conversation script.
//
//go:embed dialogue.yaml
var Dialogue []byte

// Personas lists the speakers taking part in a talk session.
//
//go:embed personas.yaml
var Personas []byte
