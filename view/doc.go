/*
Package view resolves template lookups against a stack of nested scopes.

A template renders against a Scope built from a root data item. Each lookup
chain such as $Page.Author.Name is a sequence of scope operations: Locally
starts the chain at the current local frame, Obj navigates one step (with Up
and Top jumping to enclosing frames), and a terminal operation (XMLVal,
HasValue, OutputValue or Self) produces the result and resets the chain.
Blocks such as <% loop %> and <% with %> Push the frame produced by the chain
and Pop it at the end of the block.

Each name is resolved in a strict order, the first match winning:

	1. the overlay (block-local arguments, e.g. include arguments)
	2. the current item's own members
	3. the underlay (injected fallbacks such as Layout and Content)
	4. iterator properties ($Pos, $Even, ...) from IteratorProvider values
	5. global properties from GlobalProvider values

Values are presented to templates through Data, which wraps every value
shape (scalars, lists, maps, structs and data.Viewable items) uniformly.
*/
package view
