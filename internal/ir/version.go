package ir

// Version constants stamped into generated artifacts.
const (
	// Version is the pybridge release.
	Version = "0.1.0"

	// GlueVersion is the layout version of generated glue. Bump it when
	// generated code changes shape in a way that invalidates digests.
	GlueVersion = "1"
)
