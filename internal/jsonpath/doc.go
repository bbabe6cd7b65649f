// Package jsonpath compiles and runs RFC 9535 JSONPath queries.
//
// Compile parses and checks an expression in one step and reports every
// problem at once through *Error. A compiled Path selects nodes from
// decoded values (Select) or from a stream of JSON documents (Stream):
//
//	p, err := jsonpath.Compile("$.store.book[?@.price < 10].title")
//	if err != nil {
//		return err
//	}
//	for _, n := range p.Select(doc) {
//		fmt.Println(n.Path(), n.Value)
//	}
//
// Supported selectors (RFC 9535 terminology):
//   - Child `.` / `[...]` and descendant `..` segments
//   - Name, index (negative counts from the end), wildcard `*`, slices
//     `start:end:step`, filters `?<logical-expr>`
//   - Comparisons == != < <= > >=, logical && || !, parentheses
//   - Functions length, count, match, search, value plus registered ones
package jsonpath
