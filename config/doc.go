// Package config reads hierarchical configuration files into a flat,
// separator-keyed store.
//
// # Language
//
// A configuration file is a sequence of line-oriented statements:
//
//	# comment to end of line
//	include common.conf          # path relative to this file
//	prefix := /opt/data          # local macro, not stored
//
//	block camera
//	  model = acme-9000          # stored as camera:model
//	  block lens
//	    focal = 35               # stored as camera:lens:focal
//	  endblock
//	  relativepath mask = mask.png
//	  cache = $LOCAL{prefix}/cache
//	endblock
//
//	home = $ENV{HOME}
//	cores = $SYSENV{numproc}
//	model = $CONFIG{camera:model}
//
// Blank lines are ignored and "#" starts a comment unless escaped as "\#".
//
// # Statements
//
//   - key = value: store value under the current block prefix plus key.
//   - name := value: define a local macro, referenced as $LOCAL{name}.
//   - relativepath key = value: store value resolved against the directory
//     of the file containing the statement.
//   - block name / endblock: open and close a nested key prefix.
//   - include path: process another file in place.
//
// # Expansion
//
// Right-hand sides are scanned once for references of the form $TYPE{name}.
// Each reference is offered to the registered providers in order: ENV
// (process environment), SYSENV (host facts), CONFIG (keys already stored),
// LOCAL (macros). A substituted value is never rescanned. References no
// provider resolves are left verbatim.
//
// # Errors
//
// A missing file and an endblock without a matching block stop the parse
// immediately. Every other defect is recorded as a [Diagnostic] and the parse
// continues, so that a single run reports every problem. When the outermost
// file ends, a [ParseError] listing the diagnostics is returned if any were
// recorded.
package config
