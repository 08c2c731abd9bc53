/*
Package index defines the notification seam between the core
replication engine and an external secondary-index maintainer. §1
scopes the index query compiler/evaluator out of this module; the
core's only obligation is to call Notify whenever a document's
content changes so an index collaborator elsewhere can stay current.
*/
package index

import "github.com/cuemby/burrow/pkg/types"

// Notifier is notified by the replica whenever a document's current
// revision changes (put, delete, resolve, conflict promotion). It is
// never notified for converged/no-op outcomes, since document content
// did not change.
type Notifier interface {
	Notify(doc types.Document)
}

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(doc types.Document)

func (f NotifierFunc) Notify(doc types.Document) {
	f(doc)
}

// Multi fans a single Notify out to several Notifiers, in order.
type Multi []Notifier

func (m Multi) Notify(doc types.Document) {
	for _, n := range m {
		n.Notify(doc)
	}
}
