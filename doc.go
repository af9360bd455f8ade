// Package drift generates endless, evolving ambient music. Four
// independent layers (pad, texture, arp, beat) hang off one lookahead
// clock, move their parameters along deterministic noise modulators, and
// schedule short-lived voices into a pluggable audio graph. The synth
// subpackage provides the default graph over an audio device; any Graph
// implementation works, including silent ones for tests.
package drift
