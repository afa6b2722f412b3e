//go:build !uniprocessor

package mp

// Enabled is false in kernels built with the uniprocessor tag.  The single
// core path never touches the sequencers then.
const Enabled = true
