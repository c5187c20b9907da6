//
// web service that augments a numeric grade field in the canvas
// grading view with a letter-grade picker.
// package resolves the grading standard for an assignment by searching
// the course and then each ancestor account, and keeps one picker session
// per grading-view activation in step with the grade input as the host
// reports keyboard, pointer and wheel interactions.
//
package otfgradesync
