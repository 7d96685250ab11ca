// Package domain contains the core entities of the learning system:
// knowledge cards, their categories, and the calendar-date conventions
// shared by every layer. It is independent of storage, transport, and
// content generation.
package domain
