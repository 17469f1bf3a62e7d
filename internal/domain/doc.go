// Package domain defines the core business entities of the exam paper
// generation service: users, the category taxonomy (subjects and question
// types), generated papers with their per-type details, and the transient
// unit configuration/outcome pair used while a paper is being generated.
package domain
