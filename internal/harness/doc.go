// Package harness provides conformance testing for predicates.
//
// A scenario declares a schema, a set of records and a list of cases. Each
// case is a predicate tree that is both evaluated in memory against every
// record and compiled to SQL and executed against the same records stored
// in an in-memory SQLite database. The two id sets must agree with each
// other and with the case's expectation.
//
// # Scenario Format
//
//	name: unread_inbox
//	description: "What this scenario validates"
//	schema_files:
//	  - ../schema/thread.cue
//	class: Thread
//	allocator: sequential        # sequential (default), cyclic, uuid
//	records:
//	  - {id: t1, unread: true, categories: [inbox]}
//	cases:
//	  - name: unread
//	    where: {attr: unread, op: "=", value: true}
//	    expect: [t1]
//	  - name: negated_join
//	    where: {not: [{attr: categories, op: contains, value: spam}]}
//	    expect: [t1]
//	    sql_expect: []           # documented divergence from evaluate
//	  - name: prefix
//	    where: {attr: subject, op: startsWith, value: Re}
//	    expect: []
//	    sql_error: true          # the SQL form cannot be executed
//	  - name: mixed_list
//	    where: {attr: subject, op: in, value: [1, x]}
//	    error: NON_STRING_ARRAY_ELEMENT
//
// schema may also be given inline as CUE source under the schema key.
// Relative schema_files are resolved against the scenario's directory.
//
// # Case Checks
//
//   - expect: ids accepted by evaluation, in id order
//   - sql_expect: ids returned by the SQL query when they differ from expect
//   - sql_error: the query is expected to fail when executed
//   - error: the error code raised while building, evaluating or compiling
//
// # Deterministic Testing
//
// Each case builds its predicate with a fresh allocator, so sequential and
// cyclic aliases start at M0 in every case and compiled SQL is stable for
// golden snapshot comparison. The uuid allocator is not deterministic and
// should not be used with golden files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/unread_inbox.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(ctx, scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
