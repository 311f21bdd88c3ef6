package data

import (
	_ "embed"
)

// Templates is the node template catalog offered by the builder palette.
//
//go:embed templates.json
var Templates []byte

// TransformSchema describes the canonical transform JSON sent to the platform.
//
//go:embed transform.schema.json
var TransformSchema []byte
