// Package bridge is the public entry point to pybridge.
//
// A Bridge generates Go glue for marked Python functions (py2go) and binds
// marked Go functions into a live namespace graph with a Python stub
// (go2py):
//
//	b, err := bridge.New(bridge.WithGoPackage("mathpy"))
//	if err != nil {
//		return err
//	}
//	defer b.Close()
//
//	report, err := b.GenerateGlue(ctx, "./mathpy")
//
// Options left unset fall back to the pybridge.toml or pybridge.cue file
// given to WithConfig, then to the defaults.
package bridge
