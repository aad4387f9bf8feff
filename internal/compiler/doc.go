// Package compiler turns line-oriented network scripts and query scripts
// into networks and search patterns.
//
// Each non-blank line declares one entity or one edge:
//
//	(Circle)
//	(c1) {"type": "some_object"}
//	(hasPart Circle Circle.radius)
//	hasPart c1 c1.radius
//
// One token declares an entity, three tokens (label source target) declare
// an edge. The optional trailing JSON object holds props. Lines starting
// with '#' are comments.
//
// In a query script any token may carry a '*' prefix, marking that id or
// label as a wildcard. Unprefixed ids are required: they must bind to
// themselves in the searched network.
package compiler
