// Package provider contains the standard global and iterator properties.
//
// Importing the package registers BasicIteratorSupport with
// view.DefaultRegistry, so that $Pos, $Even, $First and friends are
// available in every loop.
package provider

import "github.com/robfig/ssview/view"

func init() {
	view.DefaultRegistry.Register(new(BasicIteratorSupport))
}
