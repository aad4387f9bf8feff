// Package harness runs query scenarios against semantic networks.
//
// A scenario is a YAML file holding a network script, an optional CUE
// property schema, and a list of query cases. Each case states what the
// matcher must return: an exact set of mappings, a match count, an
// expected error, or a list of assertions over the matches.
//
// Example:
//
//	name: circle_instances
//	description: Instances whose parts derive from their prototype's parts
//	network: |
//	  (Circle)
//	  (Circle.radius)
//	  (hasPart Circle Circle.radius)
//	queries:
//	  - name: instance_of
//	    query: |
//	      (hasPart *Class *Class.part)
//	    count: 1
//
// Expectations compare mappings as sets, so they do not depend on match
// order. Golden files (see RunWithGolden) capture the full ordered output
// and therefore also pin down the matcher's deterministic order.
package harness
