// Package loader reads predicate documents (YAML) and object documents
// (JSON) and turns them into predicate trees and predicate.Fields, using a
// schema to resolve attribute names and coerce values.
//
// A predicate document names the class it applies to and a where tree:
//
//	class: Thread
//	where:
//	  and:
//	    - {attr: unread, op: "=", value: true}
//	    - not:
//	        - {attr: categories, op: contains, value: spam}
//	    - {attr: lastDate, op: ">", value: 2024-03-01T00:00:00Z}
//
// Each node is exactly one of and, or, not (a list of nodes) or a leaf
// (attr + op + value). A not node negates the conjunction of its children.
package loader
