// Package umlclass implements UML class diagram models.
//
// # Kinds
//
// Diagrams and packages own elements. Classes, instances and comments are
// leaves. Generalizations link lists of classes, dependencies and
// associations link two classifiers (classes or instances), and comment
// links attach a comment to any element.
//
// # Deletion
//
// Binary relationships are orphaned as soon as either endpoint is deleted.
// A generalization survives until all of its sources or all of its targets
// are gone.
//
// # Export
//
// [Diagram.PlantUML] renders the model as a PlantUML class diagram.
package umlclass
