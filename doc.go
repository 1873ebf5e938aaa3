/*
Package ssview renders views of Go data with SS templates.

A view is rendered from the first of a list of candidate templates found
across the theme directories. Templates may be written in the .ss language
or, through the pongo2 bridge, as .pongo2 templates; both see the same data,
global properties and iterator properties.

Usage example

Typically a site has one or more themes, each a directory of templates:

	themes/simple/Page.ss
	themes/simple/Layout/Page.ss
	themes/simple/Includes/Navigation.ss
	...

On startup, compile a bundle of themes and globals:

	views, err := ssview.NewBundle().
		WatchFiles(mode == "dev").           // recompile templates as they change
		AddGlobalsFile("config/site.globals"). // name = literal, one per line
		AddScriptFile("config/helpers.js").     // JavaScript global properties
		SetBaseURL("https://example.com/").
		AddTheme("themes/custom").
		AddTheme("themes/simple").
		Compile()

To render a page:

	var html, err = views.Viewer(
		template.Candidate{Name: "HomePage"},
		template.Candidate{Name: "Page"},
	).Process(page, nil, nil)

The item may be any Go value: maps, slices and structs are adapted by
package data, and scalars promoted to the fields of package field.

Advanced Usage

The ssview package provides a friendly interface to its sub-packages. Other
rendering engines may be written against package view, which implements the
scope and lookup rules shared by the engines here.
*/
package ssview
