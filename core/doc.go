// Package core defines the shared domain types of the course chat system:
// conversation content and its parts, retrievable chunks with course/lesson
// metadata, search filters and results, source citations and session turns.
// It has no dependencies on any other package in the module so that stores,
// models, tools and flows can all exchange values through it.
package core
