// Package schema describes the model metadata that predicates are bound to.
//
// A Class names a SQL table and owns a list of Attributes. Each Attribute
// carries three names:
//   - ModelKey: the in-memory property key read during evaluation
//   - JSONKey: the persisted column key used in compiled SQL
//   - ItemClass: the contained item class for collection attributes
//
// Collection attributes are persisted in a join table named by a
// JoinTableNamer (TableNameForJoin by default) with `id` and `value` columns.
//
// Classes are usually declared in CUE and loaded with LoadDir:
//
//	class: Thread: {
//		attributes: {
//			id:         {type: "string"}
//			unread:     {type: "bool"}
//			subject:    {type: "string"}
//			lastDate:   {type: "date", column: "last_date"}
//			categories: {type: "collection", item: "Label"}
//		}
//	}
package schema
